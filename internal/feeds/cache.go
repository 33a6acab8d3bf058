package feeds

import (
	"sync"
	"time"

	"BlackGlass/internal/domain"
)

// CacheEntry is one cached fetch result for a source URL.
type CacheEntry struct {
	Items     []domain.Item
	FetchedAt time.Time
}

// Cache is a process-wide TTL cache of fetched-and-parsed feed items keyed by
// source URL. Entries are only ever replaced by a successful fetch, never
// expired in place, so a stale entry stays available as a fallback. The key
// set is bounded by static configuration.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*CacheEntry
	now     func() time.Time
}

// NewCache builds a cache with the given time-to-live.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*CacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached items for a source URL, fresh or stale.
func (c *Cache) Get(sourceKey string) ([]domain.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[sourceKey]
	if !ok {
		return nil, false
	}

	// Copy so callers can never mutate the cached slice.
	items := make([]domain.Item, len(entry.Items))
	copy(items, entry.Items)
	return items, true
}

// Put stores a successful fetch result, overwriting any previous entry.
func (c *Cache) Put(sourceKey string, items []domain.Item) {
	stored := make([]domain.Item, len(items))
	copy(stored, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sourceKey] = &CacheEntry{Items: stored, FetchedAt: c.now()}
}

// IsFresh reports whether the entry for a source URL exists and is within TTL.
func (c *Cache) IsFresh(sourceKey string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[sourceKey]
	if !ok {
		return false
	}
	return c.now().Sub(entry.FetchedAt) < c.ttl
}
