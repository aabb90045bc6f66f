// Package cache provides an in-memory TTL cache used by provider adapters to
// shield upstream APIs from repeated identical lookups.
package cache

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is the expiry applied when a cache is constructed with a
// non-positive TTL.
const DefaultTTL = 5 * time.Minute

var whitespace = regexp.MustCompile(`\s+`)

// Key builds a normalized cache key from its parts: lower-cased, inner
// whitespace collapsed, joined with ':'. "Bangkok" and "bangkok " produce the
// same key.
func Key(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		p = whitespace.ReplaceAllString(strings.TrimSpace(p), " ")
		normalized = append(normalized, strings.ToLower(p))
	}
	return strings.Join(normalized, ":")
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a concurrency-safe map with per-cache TTL and lazy expiry. Expired
// entries are evicted on access rather than by a background sweeper.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	hits    uint64
	misses  uint64

	// now is swappable for deterministic expiry tests.
	now func() time.Time
}

// New creates a cache with the given TTL. Non-positive TTLs fall back to
// DefaultTTL.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and unexpired. An expired
// entry is removed and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Before(e.expiresAt) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.value, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if e, ok = c.entries[key]; ok && c.now().Before(e.expiresAt) {
			c.hits++
			return e.value, true
		}
		delete(c.entries, key)
	}
	c.misses++

	var zero V
	return zero, false
}

// Set stores value under key with the cache's TTL, replacing any prior entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Clear removes all entries and returns how many were dropped. Hit and miss
// counters are preserved.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry[V])
	return n
}

// Stats reports hit/miss counters and the current key count, including
// entries that have expired but not yet been lazily evicted.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Keys: len(c.entries)}
}
