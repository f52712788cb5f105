package session

import (
	"context"
	"errors"

	"auth-frontend/internal/auth"
)

// Persisted key names. They are the only externally observable client state.
const (
	KeyUserID = "userId"
	KeyToken  = "token"
)

var ErrIncomplete = errors.New("session: missing user id or token")

// Store persists the authenticated session between runs.
// Set writes both keys as one unit; a reader never observes only one of them.
type Store interface {
	Set(ctx context.Context, s auth.Session) error
	// Get returns nil, nil when no session is stored.
	Get(ctx context.Context) (*auth.Session, error)
	Clear(ctx context.Context) error
}

func checkSession(s auth.Session) error {
	if !s.Valid() {
		return ErrIncomplete
	}
	return nil
}
