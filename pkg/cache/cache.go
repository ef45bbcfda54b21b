// Package cache provides TTL-keyed memoization for expensive store calls
// and a process-lifetime graph connection manager.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how many inserts pass between opportunistic sweeps of
// expired entries. Sweeping on every insert would make hot writes O(n).
const sweepInterval = 10

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache memoizes call results under string keys with per-entry TTLs.
// Safe for concurrent use. Expired entries are swept every sweepInterval
// inserts so memory stays bounded under sustained use.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	inserts int
	now     func() time.Time
}

// NewTTLCache creates an empty cache.
func NewTTLCache() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the unexpired value stored under key.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL.
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.inserts++
	if c.inserts%sweepInterval == 0 {
		c.sweepLocked()
	}
}

// Len returns the number of entries currently held, expired or not.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// caller must hold c.mu
func (c *TTLCache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Do returns the cached value for key if an unexpired entry exists,
// otherwise calls fn once and caches its result. Errors are never cached:
// a failed backing call is retried on the next lookup.
func Do[T any](c *TTLCache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	value, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, value, ttl)
	return value, nil
}

// Key derives a cache key from a function name and its arguments. Arguments
// are JSON-serialized so two logically distinct calls never collide.
func Key(name string, args ...any) string {
	var b strings.Builder
	b.WriteString(name)
	for _, arg := range args {
		b.WriteByte(':')
		data, err := json.Marshal(arg)
		if err != nil {
			b.WriteString(fmt.Sprintf("%#v", arg))
			continue
		}
		b.Write(data)
	}
	return b.String()
}
