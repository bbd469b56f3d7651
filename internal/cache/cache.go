// Package cache is a best-effort JSON cache on top of redis. Every
// operation degrades to a miss or a no-op when redis is unavailable, so
// the API keeps working without it.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL matches the one hour expiry the API uses for all cached
// aggregates.
const DefaultTTL = time.Hour

type Cache interface {
	// GetJSON unmarshals the cached value into dest and reports whether
	// there was a hit.
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	// DeletePattern removes all keys matching a redis glob pattern.
	DeletePattern(ctx context.Context, pattern string)
}

// New returns a redis backed cache, or a no-op cache when no address is
// configured.
func New(addr, password string) Cache {
	if addr == "" {
		return noopCache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &redisCache{client: client}
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("Cache get %q failed: %v", key, err)
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Cache entry %q could not be decoded: %v", key, err)
		return false
	}
	return true
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Cache value for %q could not be encoded: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("Cache set %q failed: %v", key, err)
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache delete failed: %v", err)
	}
}

func (c *redisCache) DeletePattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Cache scan %q failed: %v", pattern, err)
		return
	}
	c.Delete(ctx, keys...)
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, any) bool           { return false }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) {}
func (noopCache) Delete(context.Context, ...string)                   {}
func (noopCache) DeletePattern(context.Context, string)               {}
