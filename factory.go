package statestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-statestore/pkg/cache"
)

// Factory owns store definitions and hands out fresh, explicitly keyed
// instances. It replaces a process-wide singleton per store type.
type Factory struct {
	backend cache.Backend
	opts    []Option

	mu          sync.RWMutex
	definitions map[string]registration

	locksMu sync.Mutex
	locks   map[string]*keyLock
}

type registration struct {
	def Definition
	cfg storeConfig
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewFactory returns a factory whose stores share backend. opts apply to
// every registered definition before the definition's own options.
func NewFactory(backend cache.Backend, opts ...Option) *Factory {
	if backend == nil {
		backend = cache.NewMemory()
	}
	return &Factory{
		backend:     backend,
		opts:        append([]Option(nil), opts...),
		definitions: map[string]registration{},
		locks:       map[string]*keyLock{},
	}
}

// Register validates def by constructing a store from it. Names must be
// unique within the factory.
func (f *Factory) Register(def Definition, opts ...Option) error {
	all := append(append([]Option(nil), f.opts...), opts...)
	cfg := applyOptions(all)
	if cfg.programCache == nil {
		cfg.programCache = NewMemoryProgramCache()
	}
	checked, err := newStore(def, f.backend, cfg)
	if err != nil {
		return err
	}
	name := checked.Name()

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.definitions[name]; exists {
		return &ConstructionError{Store: name, Field: "Name", Err: fmt.Errorf("statestore: store already registered")}
	}
	f.definitions[name] = registration{def: checked.def, cfg: cfg}
	return nil
}

// Store returns a new, empty instance of the named store keyed by
// instanceKey. Call Rehydrate (or use Open) to load its state.
func (f *Factory) Store(name string, instanceKey any) (*Store, error) {
	f.mu.RLock()
	reg, ok := f.definitions[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStore, name)
	}
	s, err := newStore(reg.def, f.backend, reg.cfg)
	if err != nil {
		return nil, err
	}
	return s.SetKey(instanceKey), nil
}

// Open returns a rehydrated instance.
func (f *Factory) Open(ctx context.Context, name string, instanceKey any) (*Store, error) {
	s, err := f.Store(name, instanceKey)
	if err != nil {
		return nil, err
	}
	if err := s.Rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Mutate runs rehydrate, fn and persist while holding a lock for the
// store's cache key, so concurrent Mutate calls for the same key in this
// process never interleave. Nothing is persisted when fn fails.
func (f *Factory) Mutate(ctx context.Context, name string, instanceKey any, fn func(*Store) error) error {
	s, err := f.Store(name, instanceKey)
	if err != nil {
		return err
	}
	unlock := f.lock(s.Key())
	defer unlock()

	if err := s.Rehydrate(ctx); err != nil {
		return err
	}
	if fn != nil {
		if err := fn(s); err != nil {
			return err
		}
	}
	return s.Persist(ctx)
}

// Names lists the registered store names in sorted order.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.definitions))
	for name := range f.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backend returns the cache shared by the factory's stores.
func (f *Factory) Backend() cache.Backend { return f.backend }

func (f *Factory) lock(key string) func() {
	f.locksMu.Lock()
	l, ok := f.locks[key]
	if !ok {
		l = &keyLock{}
		f.locks[key] = l
	}
	l.refs++
	f.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		f.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(f.locks, key)
		}
		f.locksMu.Unlock()
	}
}
