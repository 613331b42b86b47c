package audit

import (
	"sync"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
)

// Cache memoizes the latest audit per username for a fixed TTL so repeat
// lookups within a day don't trigger a fresh scrape.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	record    *models.AuditRecord
	expiresAt time.Time
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached audit for a username, if still fresh.
func (c *Cache) Get(username string) (*models.AuditRecord, bool) {
	c.mu.RLock()
	entry, ok := c.entries[username]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.record, true
}

// Set stores an audit, replacing any previous entry for the username.
func (c *Cache) Set(username string, record *models.AuditRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[username] = cacheEntry{
		record:    record,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the entry for a username.
func (c *Cache) Invalidate(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, username)
}
