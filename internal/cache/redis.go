package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache: small JSON read cache over Redis. A nil *Cache is valid and behaves
// as a permanent miss, so callers never branch on whether Redis is
// configured.
type Cache struct {
	client *redis.Client
}

func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}
