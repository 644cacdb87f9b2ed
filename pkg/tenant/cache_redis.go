package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache stores tenant records in Redis so resolution survives process
// restarts and is shared across instances.
type redisCache struct {
	client redis.UniversalClient
	prefix string
}

// DefaultRedisKeyPrefix namespaces tenant cache entries in a shared Redis.
const DefaultRedisKeyPrefix = "tenant:"

// NewRedisCache creates a Redis-backed tenant cache. The client lifecycle is
// owned by the caller; Close on the cache is a no-op.
func NewRedisCache(client redis.UniversalClient, prefix string) Cache {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		// Cache misses and transport failures are treated the same:
		// the middleware falls back to the provider.
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, c.prefix+key).Err()
}

func (c *redisCache) Close() error {
	return nil
}
