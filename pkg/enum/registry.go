package enum

import (
	"fmt"
	"maps"
	"sort"
	"sync"
)

// Registry stores enum types by name.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry returns a registry holding types.
func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{types: make(map[string]*Type)}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t, rejecting nil types and duplicate names.
func (r *Registry) Register(t *Type) error {
	if t == nil {
		return fmt.Errorf("enum: type is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.types == nil {
		r.types = make(map[string]*Type)
	}
	if _, exists := r.types[t.name]; exists {
		return fmt.Errorf("enum: type %q already registered", t.name)
	}
	r.types[t.name] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Clone returns a registry holding the same types. Registering on the clone
// leaves r untouched.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &Registry{types: maps.Clone(r.types)}
	if clone.types == nil {
		clone.types = make(map[string]*Type)
	}
	return clone
}

// Names returns registered type names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
