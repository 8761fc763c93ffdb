// Package respcache is the in-process response cache keyed by (previous turn, question).
package respcache

import (
	"sync"
	"time"
)

// Defaults.
const (
	DefaultTTL        = 10 * time.Minute
	DefaultMaxEntries = 100
)

// Key builds the cache key for a question given the normalized previous question of
// the session ("" when there is none).
func Key(previous, current string) string {
	if previous == "" {
		return current
	}
	return previous + "|" + current
}

type entry[V any] struct {
	value     V
	timestamp time.Time
}

// Cache is a bounded map with lazy TTL expiry. When full, inserting a new key evicts
// the single entry with the oldest timestamp. Eviction is a linear scan, sized for
// hundreds of entries. Safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a cache. Non-positive arguments select the defaults.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache[V]{
		entries:    make(map[string]entry[V], maxEntries),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key unless it expired; expired entries are removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether key holds an unexpired value.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.live(key)
	return ok
}

// Set stores value under key with the current timestamp.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = entry[V]{value: value, timestamp: c.now()}
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included until touched.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) live(key string) (entry[V], bool) {
	e, ok := c.entries[key]
	if !ok {
		return e, false
	}
	if c.now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		return e, false
	}
	return e, true
}

func (c *Cache[V]) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.timestamp.Before(oldest) || (e.timestamp.Equal(oldest) && k < oldestKey) {
			oldestKey, oldest, found = k, e.timestamp, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
