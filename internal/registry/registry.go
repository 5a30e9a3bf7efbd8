// Package registry provides named factory registries.
// Packages register their factories in init() functions, allowing hosts and
// config files to pick implementations by ID without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Info contains metadata about a registered factory.
type Info struct {
	ID    string
	Title string
}

type entry[F any] struct {
	factory F
	title   string
}

// Registry maps IDs to factories of type F. It is safe for concurrent use.
type Registry[F any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]entry[F]
}

// New creates an empty registry. kind names the registered things in
// error messages (e.g. "behavior").
func New[F any](kind string) *Registry[F] {
	return &Registry[F]{
		kind:    kind,
		entries: make(map[string]entry[F]),
	}
}

// Register adds a factory to the registry.
// Typically called from an init() function.
// Panics if a factory with the same ID is already registered.
func (r *Registry[F]) Register(id, title string, f F) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		panic(fmt.Sprintf("registry: %s %q already registered", r.kind, id))
	}
	r.entries[id] = entry[F]{factory: f, title: title}
}

// List returns information about all registered factories, sorted by ID.
func (r *Registry[F]) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.entries))
	for id, e := range r.entries {
		result = append(result, Info{ID: id, Title: e.title})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Get returns the factory registered under id.
// Returns an error if the ID is not registered.
func (r *Registry[F]) Get(id string) (F, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		var zero F
		return zero, fmt.Errorf("registry: unknown %s %q", r.kind, id)
	}
	return e.factory, nil
}

// Exists checks if a factory with the given ID is registered.
func (r *Registry[F]) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[id]
	return ok
}
