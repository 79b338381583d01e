package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is an in-memory LRU cache with per-entry TTL.
type MemoryCache struct {
	cache *expirable.LRU[string, []byte]
}

// NewMemoryCache creates a cache holding at most size entries, each expiring
// ttl after being stored.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Get retrieves a value from the cache.
func (mc *MemoryCache) Get(key string) ([]byte, bool) {
	return mc.cache.Get(key)
}

// Set stores a value in the cache.
func (mc *MemoryCache) Set(key string, value []byte) {
	mc.cache.Add(key, value)
}

// Close is a no-op; the expirable LRU has no background resources to release.
func (mc *MemoryCache) Close() {}

// NoopCache is used when caching is disabled.
type NoopCache struct{}

// NewNoopCache creates a new no-op cache.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Get always returns not found.
func (nc *NoopCache) Get(key string) ([]byte, bool) {
	return nil, false
}

// Set does nothing.
func (nc *NoopCache) Set(key string, value []byte) {}

// Close does nothing.
func (nc *NoopCache) Close() {}
