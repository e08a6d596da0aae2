package prefs

import "sync"

// InMemoryRepo is an in-memory preference store for tests and ephemeral runs.
type InMemoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates an empty in-memory preference store.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		values: make(map[string]string),
	}
}

// Get retrieves a stored value.
func (r *InMemoryRepo) Get(key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[key]
	return value, ok, nil
}

// Set stores or replaces a value.
func (r *InMemoryRepo) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

// Delete removes a key.
func (r *InMemoryRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}
