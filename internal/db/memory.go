package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a Store for tests and for running without a database.
type Memory struct {
	mu          sync.RWMutex
	users       map[string]User // by id
	byEmail     map[string]string
	credentials map[string]Credential
	identities  map[string]string // provider + "\x00" + provider user id -> user id
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]User),
		byEmail:     make(map[string]string),
		credentials: make(map[string]Credential),
		identities:  make(map[string]string),
	}
}

func (m *Memory) UserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) UserByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) CreateUser(_ context.Context, email, name string, verified bool) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := m.byEmail[key]; ok {
		return User{}, ErrConflict
	}

	u := User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          name,
		EmailVerified: verified,
		CreatedAt:     time.Now().UTC(),
	}
	m.users[u.ID] = u
	m.byEmail[key] = u.ID
	return u, nil
}

func (m *Memory) CredentialFor(_ context.Context, userID string) (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.credentials[userID]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) CreateCredential(_ context.Context, c Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[c.UserID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.credentials[c.UserID]; ok {
		return ErrConflict
	}
	c.CreatedAt = time.Now().UTC()
	m.credentials[c.UserID] = c
	return nil
}

func (m *Memory) UserIDByIdentity(_ context.Context, provider, providerUserID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.identities[identityKey(provider, providerUserID)]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (m *Memory) LinkIdentity(_ context.Context, userID, provider, providerUserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	key := identityKey(provider, providerUserID)
	if _, ok := m.identities[key]; ok {
		return ErrConflict
	}
	m.identities[key] = userID
	return nil
}

func (m *Memory) Close() error { return nil }

func identityKey(provider, providerUserID string) string {
	return provider + "\x00" + providerUserID
}
