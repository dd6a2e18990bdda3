// Package descriptors caches the metric names advertised by each
// METRICS_STORE account, so diagnostic queries do not hit the backend on
// every request. A background refresher is the only writer.
package descriptors

import (
	"sync"
	"time"
)

// Cache maps account name to the backend's known metric names.
type Cache struct {
	mu        sync.RWMutex
	names     map[string][]string
	refreshed map[string]time.Time
}

// NewCache creates an empty descriptors cache.
func NewCache() *Cache {
	return &Cache{
		names:     make(map[string][]string),
		refreshed: make(map[string]time.Time),
	}
}

// Set replaces the cached metric names for an account.
func (c *Cache) Set(account string, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names[account] = names
	c.refreshed[account] = time.Now().UTC()
}

// Get returns the cached metric names for an account and when they were
// last refreshed.
func (c *Cache) Get(account string) ([]string, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names, ok := c.names[account]
	return names, c.refreshed[account], ok
}

// Prune drops cached entries for accounts not in keep.
func (c *Cache) Prune(keep map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for account := range c.names {
		if _, ok := keep[account]; !ok {
			delete(c.names, account)
			delete(c.refreshed, account)
		}
	}
}
