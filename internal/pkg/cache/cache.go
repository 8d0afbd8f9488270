package cache

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache is a bounded in-process cache whose entries expire a fixed time after being written.
type Cache[K comparable, V any] struct {
	cache *otter.Cache[K, V]
}

func New[K comparable, V any](maxSize int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		cache: otter.Must(&otter.Options[K, V]{
			MaximumSize:      maxSize,
			ExpiryCalculator: otter.ExpiryWriting[K, V](ttl),
		}),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.cache.GetIfPresent(key)
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.cache.Set(key, value)
}

func (c *Cache[K, V]) Invalidate(key K) {
	c.cache.Invalidate(key)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.cache.GetIfPresent(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.cache.Set(key, v)
	return v, nil
}
