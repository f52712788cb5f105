package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth-frontend/internal/db"
)

func newService() (*Service, *db.Memory) {
	store := db.NewMemory()
	return NewService(store, WithCost(bcrypt.MinCost)), store
}

func TestRegisterThenAuthenticate(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	cred, err := store.CredentialFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, HashVersionBcrypt, cred.HashVersion)
	assert.NotEqual(t, "Abcdef1!", cred.PasswordHash)

	got, err := svc.Authenticate(ctx, "A@B.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRegisterTwice(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@b.com", "Other1!x")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterAddsPasswordToProviderAccount(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	existing, err := store.CreateUser(ctx, "g@b.com", "Gee", true)
	require.NoError(t, err)

	u, err := svc.Register(ctx, "g@b.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "Abcdef1!")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestAuthenticateFailuresLookAlike(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, "nopass@b.com", "", false)
	require.NoError(t, err)

	for name, tc := range map[string][2]string{
		"wrong password": {"a@b.com", "x"},
		"unknown user":   {"who@b.com", "Abcdef1!"},
		"no credential":  {"nopass@b.com", "Abcdef1!"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tc[0], tc[1])
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}
