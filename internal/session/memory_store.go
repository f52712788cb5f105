package session

import (
	"context"
	"sync"

	"auth-frontend/internal/auth"
)

// MemoryStore keeps the session in process memory. It counts writes so
// callers can assert how often a session was established.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Set(_ context.Context, s auth.Session) error {
	if err := checkSession(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[KeyUserID] = s.UserID
	m.values[KeyToken] = s.Token
	m.writes++
	return nil
}

func (m *MemoryStore) Get(_ context.Context) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fromValues(m.values), nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, KeyUserID)
	delete(m.values, KeyToken)
	return nil
}

// Writes returns the number of successful Set calls.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func fromValues(values map[string]string) *auth.Session {
	s := auth.Session{UserID: values[KeyUserID], Token: values[KeyToken]}
	if !s.Valid() {
		return nil
	}
	return &s
}
