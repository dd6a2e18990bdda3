package registry

import (
	"errors"
	"sync"

	"github.com/promreg/promregistry/internal/domain"
)

// ErrNotFound is returned when a name is absent from the registry.
var ErrNotFound = errors.New("account not found")

// Registry is the process-wide store of registered accounts, keyed by
// account name. Safe for concurrent readers and writers: bootstrap writes
// it once at startup while background jobs read it on every cycle.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*domain.AccountRecord
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		accounts: make(map[string]*domain.AccountRecord),
	}
}

// Register inserts or replaces the record under its name and reports
// whether an existing record was replaced. Registration is idempotent by
// name: the later record wins.
func (r *Registry) Register(record *domain.AccountRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.accounts[record.Name]
	r.accounts[record.Name] = record
	return replaced
}

// Get retrieves a record by account name.
func (r *Registry) Get(name string) (*domain.AccountRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.accounts[name]
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// All returns a snapshot of every registered record. Order is not defined;
// callers must not depend on it.
func (r *Registry) All() []*domain.AccountRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*domain.AccountRecord, 0, len(r.accounts))
	for _, record := range r.accounts {
		records = append(records, record)
	}
	return records
}

// Names returns the names of every registered account.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.accounts))
	for name := range r.accounts {
		names = append(names, name)
	}
	return names
}

// Delete removes a record by name. Removing an absent name is a no-op.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, name)
}

// Count returns the number of registered accounts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.accounts)
}
