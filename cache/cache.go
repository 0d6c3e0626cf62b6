// ABOUTME: In-memory result cache with TTL-based lazy expiration
// ABOUTME: Serializes per-key compute with singleflight so concurrent callers share one result

package cache

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache memoizes computed values for a fixed TTL. There is no capacity bound
// and no background sweep: a stale entry is evicted only when its own key is
// next read. The check/evict/compute/store sequence for one key is serialized
// through singleflight, so concurrent callers for the same key trigger at
// most one compute.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// New creates a cache whose entries live for ttl after insertion.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetOrCompute returns the live cached value for key, or runs compute, stores
// its result, and returns it. A compute error is returned to every waiting
// caller and nothing is stored.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	val, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			if c.now().Before(e.expiresAt) {
				c.mu.Unlock()
				slog.Debug("Cache hit", "key", key)
				return e.data, nil
			}
			delete(c.entries, key)
			slog.Debug("Cache expired", "key", key)
		}
		c.mu.Unlock()

		data, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{data: data, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
		slog.Debug("Cache set", "key", key, "ttl", c.ttl)
		return data, nil
	})
	return val, err
}

// Get returns the live value for key, evicting it first if stale.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Set stores value for key, silently superseding any previous entry.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: value, expiresAt: c.now().Add(c.ttl)}
}

// Clear removes key regardless of freshness.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
