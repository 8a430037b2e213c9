// Package cache provides a small in-memory cache with per-entry expiry. It
// is best-effort and lives only as long as the process.
package cache

import (
	"sync"
	"time"
)

// TTL maps string keys to values that expire ttl after they were stored.
// It is safe for concurrent use. A nil *TTL is a valid, always-empty cache.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	nowFunc func() time.Time
	sweepAt int
}

// sweepThreshold is the entry count at which Set first drops expired
// entries. After each sweep the next one waits until the map doubles.
const sweepThreshold = 256

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	nowFunc func() time.Time
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(o *options) {
		o.nowFunc = f
	}
}

// New creates a cache whose entries live for ttl. A non-positive ttl
// returns nil, which disables caching.
func New[V any](ttl time.Duration, opts ...Option) *TTL[V] {
	if ttl <= 0 {
		return nil
	}
	o := options{nowFunc: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		nowFunc: o.nowFunc,
		sweepAt: sweepThreshold,
	}
}

// Get returns the value for key if present and not expired. Expired
// entries are removed on access.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.nowFunc().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key. Once the cache holds sweepAt entries the
// expired ones are dropped, so keys that are never read again do not
// accumulate.
func (c *TTL[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFunc()
	c.entries[key] = entry[V]{value: value, storedAt: now}
	if len(c.entries) >= c.sweepAt {
		c.sweep(now)
		c.sweepAt = max(sweepThreshold, 2*len(c.entries))
	}
}

func (c *TTL[V]) sweep(now time.Time) {
	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
