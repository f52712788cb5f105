package resolver

import (
	"context"
	"errors"
	"fmt"

	"auth-frontend/internal/db"
)

// StoreResolver resolves identities against a db.Store.
type StoreResolver struct {
	store db.Store
}

var _ Resolver = (*StoreResolver)(nil)

func NewStoreResolver(store db.Store) *StoreResolver {
	return &StoreResolver{store: store}
}

func (r *StoreResolver) Resolve(ctx context.Context, identity Identity) (db.User, error) {
	if identity.Provider == "" || identity.ProviderUserID == "" || identity.Email == "" {
		return db.User{}, errors.New("identity is incomplete")
	}

	// 1. Known identity
	userID, err := r.store.UserIDByIdentity(ctx, identity.Provider, identity.ProviderUserID)
	if err == nil {
		if err := r.refusePasswordAccount(ctx, userID); err != nil {
			return db.User{}, err
		}
		return r.store.UserByID(ctx, userID)
	}
	if !errors.Is(err, db.ErrNotFound) {
		return db.User{}, err
	}

	// 2. Existing account by email, new provider
	user, err := r.store.UserByEmail(ctx, identity.Email)
	if errors.Is(err, db.ErrNotFound) {
		// 3. New account
		user, err = r.store.CreateUser(ctx, identity.Email, identity.Name, identity.EmailVerified)
	}
	if err != nil {
		return db.User{}, fmt.Errorf("resolve user: %w", err)
	}
	if err := r.refusePasswordAccount(ctx, user.ID); err != nil {
		return db.User{}, err
	}

	// 4. Identity mapping
	if err := r.store.LinkIdentity(ctx, user.ID, identity.Provider, identity.ProviderUserID); err != nil {
		return db.User{}, fmt.Errorf("link identity: %w", err)
	}

	return user, nil
}

// refusePasswordAccount fails with ErrPasswordAccount when userID has a
// password credential.
func (r *StoreResolver) refusePasswordAccount(ctx context.Context, userID string) error {
	_, err := r.store.CredentialFor(ctx, userID)
	switch {
	case err == nil:
		return ErrPasswordAccount
	case errors.Is(err, db.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check credential: %w", err)
	}
}
