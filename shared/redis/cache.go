package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KV is the subset of the go-redis command set the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Bind it to a specific view type T; each instance holds a Redis client and an
// optional TTL (pass 0 for keys that should not expire).
type ViewCache[T any] struct {
	client KV
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

// NewViewCache creates a ViewCache whose keys are prefix+id.
func NewViewCache[T any](client KV, prefix string, ttl time.Duration, log zerolog.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, log: log}
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	data, err := c.client.Get(ctx, c.prefix+id).Result()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn().Err(err).Str("key", c.prefix+id).Msg("view cache read failed")
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		c.log.Warn().Err(err).Str("key", c.prefix+id).Msg("view cache entry is corrupt")
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it under id.
// Errors are logged rather than returned; a cache write miss is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, id string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", c.prefix+id).Msg("view cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, c.prefix+id, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", c.prefix+id).Msg("view cache write failed")
	}
}

// Delete removes a key from Redis.
func (c *ViewCache[T]) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.prefix+id).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", c.prefix+id).Msg("view cache delete failed")
	}
}
