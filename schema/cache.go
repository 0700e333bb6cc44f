package schema

import (
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes values per key with compute-if-absent semantics. Concurrent
// callers asking for the same missing key share a single computation, and a
// failed computation leaves the key absent. The zero value is not usable,
// use NewCache.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	flight  singleflight.Group
}

// NewCache returns an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get returns the value stored for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// GetOrCompute returns the value stored for key, running fn to produce it
// if it is absent. fn runs at most once per key at a time, and never again
// once it succeeded.
func (c *Cache[V]) GetOrCompute(key string, fn func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	res, err, _ := c.flight.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len returns the number of stored values.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the stored keys in lexical order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
