package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-frontend/internal/auth"
	"auth-frontend/internal/config"
	"auth-frontend/internal/redis"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty store must report no session")

	first := auth.Session{UserID: "u-1", Token: "t-1"}
	require.NoError(t, store.Set(ctx, first))

	got, err = store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	// last successful write wins
	second := auth.Session{UserID: "u-2", Token: "t-2"}
	require.NoError(t, store.Set(ctx, second))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, *got)

	assert.ErrorIs(t, store.Set(ctx, auth.Session{UserID: "u-3"}), ErrIncomplete)
	assert.ErrorIs(t, store.Set(ctx, auth.Session{Token: "t-3"}), ErrIncomplete)
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, *got, "rejected writes must not touch stored keys")

	require.NoError(t, store.Clear(ctx))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Clear(ctx), "clearing twice is fine")
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)
	assert.Equal(t, 2, store.Writes())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStoreWritesBothKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set(context.Background(), auth.Session{UserID: "u-1", Token: "t-1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u-1","token":"t-1"}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreIgnoresHalfWrittenPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"userId":"u-1"}`), 0o600))

	got, err := NewFileStore(path).Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, err := NewFileStore(path).Get(context.Background())
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := redis.New(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	prefix := "authfront-test:" + uuid.NewString() + ":"
	exerciseStore(t, NewRedisStore(client.Client, prefix))
}
