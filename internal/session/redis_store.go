package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"auth-frontend/internal/auth"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store. prefix namespaces the
// userId and token keys, e.g. "authfront:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) key(name string) string {
	return r.prefix + name
}

// Set writes both keys inside MULTI/EXEC.
func (r *RedisStore) Set(ctx context.Context, s auth.Session) error {
	if err := checkSession(s); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(KeyUserID), s.UserID, 0)
		pipe.Set(ctx, r.key(KeyToken), s.Token, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis write failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context) (*auth.Session, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyUserID), r.key(KeyToken)).Result()
	if err != nil {
		return nil, fmt.Errorf("session: redis read failed: %w", err)
	}

	values := make(map[string]string, 2)
	for i, name := range []string{KeyUserID, KeyToken} {
		if s, ok := vals[i].(string); ok {
			values[name] = s
		}
	}

	return fromValues(values), nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key(KeyUserID), r.key(KeyToken)).Err()
}
