package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"auth-frontend/internal/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
	ErrInvalidEmail       = errors.New("invalid email")
)

type Service struct {
	store db.Store
	cost  int
}

type Option func(*Service)

// WithCost overrides the bcrypt cost, mostly so tests run fast.
func WithCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

func NewService(store db.Store, opts ...Option) *Service {
	s := &Service{store: store, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches a password to the account for email, creating the
// account if it does not exist yet. An account that signed up through a
// provider can add a password once.
func (s *Service) Register(ctx context.Context, email, password string) (db.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return db.User{}, ErrInvalidEmail
	}

	hash, version, err := HashPassword(password, s.cost)
	if err != nil {
		return db.User{}, err
	}

	// 1. Find or create user by email
	user, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		user, err = s.store.CreateUser(ctx, email, "", false)
	}
	if err != nil {
		return db.User{}, fmt.Errorf("resolve user: %w", err)
	}

	// 2. One credential per user
	err = s.store.CreateCredential(ctx, db.Credential{
		UserID:       user.ID,
		PasswordHash: hash,
		HashVersion:  version,
	})
	if errors.Is(err, db.ErrConflict) {
		return db.User{}, ErrAlreadyRegistered
	}
	if err != nil {
		return db.User{}, fmt.Errorf("store credential: %w", err)
	}

	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (db.User, error) {
	user, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		// hide whether user exists or not
		return db.User{}, ErrInvalidCredentials
	}

	cred, err := s.store.CredentialFor(ctx, user.ID)
	if err != nil {
		return db.User{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return db.User{}, ErrInvalidCredentials
	}

	return user, nil
}
