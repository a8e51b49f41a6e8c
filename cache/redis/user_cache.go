// Package redis provides the Redis-backed implementation of cache.UserCache,
// for deployments where several backend instances share one auth cache.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mujeeb218353/youtube-backend/cache"
)

// UserCache implements cache.UserCache on Redis.
type UserCache struct {
	client *redis.Client
	prefix string
}

// NewUserCache creates a new UserCache. prefix namespaces the keys.
func NewUserCache(client *redis.Client, prefix string) *UserCache {
	return &UserCache{client: client, prefix: prefix}
}

func (c *UserCache) key(token string) string {
	return fmt.Sprintf("%s:auth:%s", c.prefix, cache.HashToken(token))
}

// Get implements cache.UserCache.Get.
func (c *UserCache) Get(ctx context.Context, token string) (*cache.Entry, bool) {
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		return nil, false
	}

	var entry cache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return &entry, true
}

// Set implements cache.UserCache.Set.
func (c *UserCache) Set(ctx context.Context, token string, entry *cache.Entry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry in Redis: %w", err)
	}
	return nil
}

// Delete implements cache.UserCache.Delete.
func (c *UserCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.key(token)).Err()
}

var _ cache.UserCache = (*UserCache)(nil)
