package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded catalog reads
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Redis is a Cache backed by a Redis server
type Redis struct {
	c *redis.Client
}

// NewRedis connects a Redis cache
func NewRedis(addr, pass string, db int) *Redis {
	return &Redis{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// Ping checks the server is reachable
func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

// Close releases the client
func (r *Redis) Close() error {
	return r.c.Close()
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	metrics.ObserveCache("redis", "hit")
	if err := json.Unmarshal(v, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	metrics.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, b, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	metrics.ObserveCache("redis", "del")
	return r.c.Del(ctx, keys...).Err()
}

// Noop never stores anything; every Get is a miss
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Del(context.Context, ...string) error                  { return nil }

// Key joins parts into a namespaced cache key
func Key(parts ...string) string {
	key := "crwd"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
