package collector

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages fund data sources by name
type Registry struct {
	mu      sync.RWMutex
	sources map[string]FundSource
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]FundSource),
	}
}

// Register adds a source to the registry, replacing any source with the
// same name
func (r *Registry) Register(s FundSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get retrieves a source by name
func (r *Registry) Get(name string) (FundSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

// MustGet retrieves a source by name or returns an error listing the
// registered names
func (r *Registry) MustGet(name string) (FundSource, error) {
	if s, ok := r.Get(name); ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown fund source %q (registered: %v)", name, r.Names())
}

// Names returns the registered source names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
