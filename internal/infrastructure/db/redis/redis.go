// Package redis backs request idempotency for the payments API.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout   = 5 * time.Second
	defaultPrefix = "idem"
)

// Config is the REDIS_* section of the service configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces every idempotency key. Defaults to "idem".
	KeyPrefix string
	// Timeout bounds the connectivity check in Open.
	Timeout time.Duration
}

// Open dials Redis, verifies it answers PING and returns a store that owns the
// client. Close releases it.
func Open(ctx context.Context, cfg Config) (*IdempotencyStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: empty address")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = dialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return NewIdempotencyStore(client, cfg.KeyPrefix), nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return defaultPrefix
	}
	return prefix
}
