// Package cache provides an optional observation cache for the series
// store, so repeated runs inside the TTL skip the provider round trip.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw provider payloads keyed by series code + start date.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Nop satisfies Cache with no storage; used when no redis address is
// configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Redis backs the cache with a redis instance.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects a cache to the given address.
func NewRedis(addr string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "macrorun:obs:",
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, payload, ttl).Err()
}

// Close releases the underlying connection.
func (r *Redis) Close() error { return r.client.Close() }
