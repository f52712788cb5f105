package resolver

import (
	"context"
	"errors"

	"auth-frontend/internal/db"
)

// ErrPasswordAccount means the email belongs to an account that signs in
// with a password. Provider identities are never attached to such accounts.
var ErrPasswordAccount = errors.New("account uses password sign-in")

// Identity is what a provider vouches for about a user.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	EmailVerified  bool
}

// Resolver determines which account an external identity belongs to.
// It is the only place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, identity Identity) (db.User, error)
}
