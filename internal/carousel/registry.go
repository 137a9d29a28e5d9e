package carousel

import (
	"fmt"
	"sort"
	"sync"
)

// DataFetcher returns the formatted text for one page of content and the
// total page count. Implementations must tolerate any page >= 1 and report
// at least one page even when empty; the render engine enforces the latter
// as a safety net.
type DataFetcher func(page, pageSize int, config *Config) (text string, totalPages int, err error)

// Registry maps data fetcher keys to their implementations. It is populated
// once at process start by the composition root and then only read, so
// configs can point at different content sources without the scheduler or
// pager knowing about content semantics.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]DataFetcher
}

// NewRegistry creates an empty fetcher registry
func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[string]DataFetcher),
	}
}

// Register adds a fetcher under the given key. Registering a duplicate key
// is a programming error.
func (r *Registry) Register(key string, fetcher DataFetcher) error {
	if key == "" {
		return fmt.Errorf("fetcher key must not be empty")
	}
	if fetcher == nil {
		return fmt.Errorf("fetcher for key %q must not be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fetchers[key]; exists {
		return fmt.Errorf("fetcher key %q already registered", key)
	}

	r.fetchers[key] = fetcher
	return nil
}

// Resolve looks up a fetcher by its exact key
func (r *Registry) Resolve(key string) (DataFetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fetcher, exists := r.fetchers[key]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrFetcherNotRegistered, key)
	}
	return fetcher, nil
}

// Keys returns the registered fetcher keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.fetchers))
	for key := range r.fetchers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
