package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore claims request keys in Redis so a retried write is applied once.
// Key format: <prefix>:<scope>:<key>
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore wraps an existing client. An empty prefix means "idem".
func NewIdempotencyStore(client *redis.Client, prefix string) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: normalizePrefix(prefix)}
}

// Claim atomically records key under scope. It returns false when the key was
// already claimed and has not yet expired. A non-positive ttl falls back to 24h.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	ok, err := s.client.SetNX(ctx, s.key(scope, key), time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim. Releasing a key that is not held is not an error.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}

func (s *IdempotencyStore) key(scope, key string) string {
	return s.prefix + ":" + scope + ":" + key
}
