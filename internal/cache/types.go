package cache

// Cache defines the interface for dispatch-result caching. Different
// implementations (in-memory, Redis, ...) can be plugged in behind it.
type Cache interface {
	// Get retrieves a cached result by key.
	Get(key string) ([]byte, bool)

	// Set stores a result in the cache under the given key.
	Set(key string, value []byte)

	// Close releases any resources held by the cache.
	Close()
}
