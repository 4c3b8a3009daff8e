// Package reccache memoizes ranked recommendation lists per user within
// a freshness window.
//
// One entry per user, overwritten on each fresh computation. There is no
// eviction beyond overwrite; growth is bounded by the user population.
package reccache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// defaultTTL is the freshness window for a cached list.
const defaultTTL = 30 * time.Minute

type entry struct {
	recommendations []model.Recommendation
	storedAt        time.Time
}

// Cache holds one ranked list per user, valid while younger than the TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   clockwork.Clock
}

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the clock used for entry age checks.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates an empty cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the user's cached list if one exists and is still fresh.
// A stale entry is never returned.
func (c *Cache) Get(userID string) ([]model.Recommendation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.recommendations, true
}

// Put stores the user's ranked list, overwriting any previous entry.
func (c *Cache) Put(userID string, recs []model.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userID] = entry{
		recommendations: recs,
		storedAt:        c.clock.Now(),
	}
}

// Invalidate drops the user's entry, forcing the next read to recompute.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Len returns the number of cached users, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
