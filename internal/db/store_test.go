package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	email := "User-" + uuid.NewString()[:8] + "@Example.com"

	_, err := s.UserByEmail(ctx, email)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := s.CreateUser(ctx, email, "User", false)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, email, u.Email)

	_, err = s.CreateUser(ctx, strings.ToLower(email), "Again", true)
	assert.ErrorIs(t, err, ErrConflict, "emails are unique regardless of case")

	got, err := s.UserByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "User", got.Name)

	_, err = s.CredentialFor(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateCredential(ctx, Credential{UserID: u.ID, PasswordHash: "h", HashVersion: "bcrypt"}))
	assert.ErrorIs(t, s.CreateCredential(ctx, Credential{UserID: u.ID, PasswordHash: "h2", HashVersion: "bcrypt"}), ErrConflict)

	c, err := s.CredentialFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h", c.PasswordHash)

	_, err = s.UserIDByIdentity(ctx, "google", email)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.LinkIdentity(ctx, u.ID, "google", email))
	assert.ErrorIs(t, s.LinkIdentity(ctx, u.ID, "google", email), ErrConflict)

	id, err := s.UserIDByIdentity(ctx, "google", email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryRejectsOrphans(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	assert.ErrorIs(t, m.CreateCredential(ctx, Credential{UserID: "nobody"}), ErrNotFound)
	assert.ErrorIs(t, m.LinkIdentity(ctx, "nobody", "google", "x"), ErrNotFound)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		t.Skip("DATABASE_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	// migrating twice is harmless
	require.NoError(t, Migrate(ctx, p.db))

	exerciseStore(t, p)
}
