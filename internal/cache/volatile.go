// Package cache holds the in-process search cache and the persistent answer cache.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Volatile is an in-process map with a fixed expiry. Expired entries are
// never returned, whether or not Sweep has run.
type Volatile[V any] struct {
	expire time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
}

type VolatileOption func(*volatileOptions)

type volatileOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) VolatileOption {
	return func(o *volatileOptions) { o.now = now }
}

func NewVolatile[V any](expire time.Duration, opts ...VolatileOption) *Volatile[V] {
	o := volatileOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Volatile[V]{
		expire:  expire,
		now:     o.now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the value for key if it was stored less than the expiry ago.
func (c *Volatile[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.expire {
		c.mu.Lock()
		// re-check; a concurrent Put may have refreshed it
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, replacing any previous entry and its timestamp.
func (c *Volatile[V]) Put(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Sweep deletes expired entries and returns how many were removed.
func (c *Volatile[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.expire {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Volatile[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
