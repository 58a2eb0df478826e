package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// Cache is a key/value store with a fixed TTL. Expiry is checked lazily on
// read; an entry older than the TTL is treated as absent, never served.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewWithClock is like New but takes the clock, for tests.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	c := New[V](ttl)
	c.now = now
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if c.now().Sub(e.cachedAt) >= c.ttl {
		var zero V
		return zero, false
	}

	return e.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, cachedAt: c.now()}
}

func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}
