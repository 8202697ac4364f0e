package cast

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownCast is returned when a spec names a cast nobody registered.
var ErrUnknownCast = errors.New("cast: unknown cast")

// Factory builds a cast from the positional arguments of its specifier.
type Factory func(args ...string) (Cast, error)

// Registry stores cast factories keyed by case-insensitive name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding every built-in cast under its
// name and aliases.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	for alias, kind := range aliases {
		if err := registry.Register(alias, builtinFactory(kind)); err != nil {
			panic(err)
		}
	}
	return registry
}

// Register stores factory under name guarding against duplicates.
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("cast: factory %q is nil", name)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("cast: factory name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	key := strings.ToLower(name)
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("cast: factory %q already registered", name)
	}
	r.factories[key] = factory
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[strings.ToLower(name)]
	return ok
}

// Resolve builds the cast described by spec. Enum specs are not handled here.
func (r *Registry) Resolve(spec Spec) (Cast, error) {
	switch spec.Kind {
	case SpecInstance:
		if spec.Instance == nil {
			return nil, fmt.Errorf("cast: instance spec has no cast")
		}
		return spec.Instance, nil
	case SpecEnum:
		return nil, fmt.Errorf("cast: enum spec %q must be resolved against an enum registry", spec.Name)
	}
	if r == nil {
		return nil, fmt.Errorf("cast: registry is nil")
	}
	r.mu.RLock()
	factory := r.factories[strings.ToLower(spec.Name)]
	r.mu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownCast, spec.Name)
	}
	instance, err := factory(spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("cast: build %q: %w", spec.String(), err)
	}
	if instance == nil {
		return nil, fmt.Errorf("cast: factory %q returned nil", spec.Name)
	}
	return instance, nil
}

// Clone returns a shallow copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &Registry{
		factories: make(map[string]Factory, len(r.factories)),
	}
	for name, factory := range r.factories {
		clone.factories[name] = factory
	}
	return clone
}

// Names returns registered names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinFactory(kind Kind) Factory {
	return func(args ...string) (Cast, error) {
		switch kind {
		case KindDate, KindImmutableDate:
			if len(args) > 1 {
				return nil, fmt.Errorf("%s takes at most one layout argument", kind)
			}
			layout := ""
			if len(args) == 1 {
				resolved, err := Layout(args[0])
				if err != nil {
					return nil, err
				}
				layout = resolved
			}
			if kind == KindDate {
				return Date{Layout: layout}, nil
			}
			return ImmutableDate{Layout: layout}, nil
		case KindCollection:
			if len(args) > 1 {
				return nil, fmt.Errorf("%s takes at most one item cast argument", kind)
			}
			if len(args) == 1 {
				itemKind, ok := builtinKind(args[0])
				if !ok || itemKind == KindCollection {
					return nil, fmt.Errorf("%w %q for collection items", ErrUnknownCast, args[0])
				}
				item, err := builtinFactory(itemKind)()
				if err != nil {
					return nil, err
				}
				return CollectionCast{Item: item}, nil
			}
			return CollectionCast{}, nil
		}
		if len(args) > 0 {
			return nil, fmt.Errorf("%s takes no arguments", kind)
		}
		switch kind {
		case KindBool:
			return Bool{}, nil
		case KindInteger:
			return Integer{}, nil
		case KindFloat:
			return Float{}, nil
		case KindString:
			return String{}, nil
		case KindJSON:
			return JSON{}, nil
		case KindObject:
			return Object{}, nil
		case KindTimestamp:
			return Timestamp{}, nil
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownCast, kind)
	}
}
