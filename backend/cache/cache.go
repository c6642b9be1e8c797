// Package cache provides the byte-level key/value stores behind the catalog
// cache. Entries are opaque bytes with a TTL; callers own serialization.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes every key matching a glob such as "catalog:*".
	DelPattern(ctx context.Context, pattern string) error
	Close() error
}

// New returns a Redis store when redisURL is set and reachable, and an
// in-process store otherwise.
func New(ctx context.Context, redisURL string, logger *log.Logger) (Store, error) {
	if redisURL == "" {
		logger.Println("REDIS_URL not set, using in-process catalog cache")
		return NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Printf("Redis unreachable (%v), using in-process catalog cache", err)
		return NewMemoryStore(), nil
	}
	return NewRedisStore(client), nil
}
