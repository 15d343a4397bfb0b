package application

import (
	"sync"
	"time"

	"github.com/example/weekly-planner/internal/persistence"
)

// weekCache stores recently fetched week listings to avoid repeated store
// queries while nothing has been written. Any write path invalidates the
// affected week.
type weekCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]weekCacheEntry
}

type weekCacheEntry struct {
	events    []persistence.Event
	expiresAt time.Time
}

func newWeekCache(ttl time.Duration, now func() time.Time) *weekCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &weekCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]weekCacheEntry),
	}
}

func (c *weekCache) Get(key string) ([]persistence.Event, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneEvents(entry.events), true
}

func (c *weekCache) Set(key string, events []persistence.Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = weekCacheEntry{
		events:    cloneEvents(events),
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *weekCache) Invalidate(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
