package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryUserCache implements UserCache using ttlcache.
type MemoryUserCache struct {
	cache *ttlcache.Cache[string, *Entry]
}

// NewMemoryUserCache creates a new in-process user cache with automatic
// cleanup.
func NewMemoryUserCache(defaultTTL time.Duration) *MemoryUserCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Entry](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, *Entry](),
	)
	go cache.Start()

	return &MemoryUserCache{cache: cache}
}

// Get implements UserCache.Get.
func (c *MemoryUserCache) Get(_ context.Context, token string) (*Entry, bool) {
	item := c.cache.Get(HashToken(token))
	if item == nil {
		return nil, false
	}
	entry := item.Value()
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// Set implements UserCache.Set. The entry lives until its token expires.
func (c *MemoryUserCache) Set(_ context.Context, token string, entry *Entry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	c.cache.Set(HashToken(token), entry, ttl)
	return nil
}

// Delete removes an entry from the cache.
func (c *MemoryUserCache) Delete(_ context.Context, token string) error {
	c.cache.Delete(HashToken(token))
	return nil
}

var _ UserCache = (*MemoryUserCache)(nil)
