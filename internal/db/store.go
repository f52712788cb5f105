// Package db stores the development identity service's accounts.
package db

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("db: not found")
	ErrConflict = errors.New("db: already exists")
)

type User struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
	CreatedAt     time.Time
}

type Credential struct {
	UserID       string
	PasswordHash string
	HashVersion  string
	CreatedAt    time.Time
}

// Store is implemented by Postgres and Memory. Emails compare
// case-insensitively.
type Store interface {
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, email, name string, verified bool) (User, error)

	CredentialFor(ctx context.Context, userID string) (Credential, error)
	CreateCredential(ctx context.Context, c Credential) error

	UserIDByIdentity(ctx context.Context, provider, providerUserID string) (string, error)
	LinkIdentity(ctx context.Context, userID, provider, providerUserID string) error

	Close() error
}
