package health

import (
	"sync"

	"github.com/promreg/promregistry/internal/domain"
)

// Cache holds the most recent health verdict per account name. The health
// job is its only writer; the HTTP layer reads it concurrently.
type Cache struct {
	mu       sync.RWMutex
	verdicts map[string]domain.HealthVerdict
}

// NewCache creates an empty health cache.
func NewCache() *Cache {
	return &Cache{
		verdicts: make(map[string]domain.HealthVerdict),
	}
}

// Set overwrites the verdict for an account.
func (c *Cache) Set(name string, verdict domain.HealthVerdict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.verdicts[name] = verdict
}

// Get retrieves the latest verdict for an account.
func (c *Cache) Get(name string) (domain.HealthVerdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	verdict, ok := c.verdicts[name]
	return verdict, ok
}

// All returns a copy of every tracked verdict.
func (c *Cache) All() map[string]domain.HealthVerdict {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]domain.HealthVerdict, len(c.verdicts))
	for name, verdict := range c.verdicts {
		out[name] = verdict
	}
	return out
}

// Prune drops every verdict whose account name is not in keep. Returns the
// names that were dropped.
func (c *Cache) Prune(keep map[string]struct{}) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped []string
	for name := range c.verdicts {
		if _, ok := keep[name]; !ok {
			delete(c.verdicts, name)
			dropped = append(dropped, name)
		}
	}
	return dropped
}

// Count returns the number of tracked accounts.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.verdicts)
}

// Status is the aggregate health over all tracked accounts.
type Status struct {
	// Up is true when every tracked verdict is healthy. With zero tracked
	// accounts it is true, so the service does not look down before the
	// first cycle completes.
	Up bool

	// Accounts holds the per-account detail behind the aggregate.
	Accounts map[string]domain.HealthVerdict
}

// Aggregate computes the current aggregate status.
func (c *Cache) Aggregate() Status {
	accounts := c.All()

	up := true
	for _, verdict := range accounts {
		if !verdict.Healthy {
			up = false
			break
		}
	}

	return Status{Up: up, Accounts: accounts}
}
