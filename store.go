package statestore

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-statestore/internal/clone"
	"github.com/goliatone/go-statestore/pkg/activity"
	"github.com/goliatone/go-statestore/pkg/cache"
	"github.com/goliatone/go-statestore/pkg/cast"
	"github.com/goliatone/go-statestore/pkg/enum"
)

// Store is a named bag of declared attributes backed by a cache entry.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines, or that run overlapping rehydrate/persist cycles for the same
// cache key, must synchronize externally (see Factory.Mutate).
type Store struct {
	def         Definition
	backend     cache.Backend
	cfg         storeConfig
	instanceKey string
	state       map[string]any

	attributes []string
	declared   map[string]struct{}
	specs      map[string]cast.Spec
	casts      map[string]cast.Cast
	enums      map[string]*enum.Type
	methods    map[string]method

	guards  []guard
	engine  string
	emitter *activity.Emitter
}

// New validates def and builds a Store over backend. A nil backend uses a
// fresh in-memory cache. Every cast and enum is resolved here, so an invalid
// definition fails with a *ConstructionError instead of on first use.
func New(def Definition, backend cache.Backend, opts ...Option) (*Store, error) {
	cfg := applyOptions(opts)
	return newStore(def, backend, cfg)
}

func newStore(def Definition, backend cache.Backend, cfg storeConfig) (*Store, error) {
	def = def.clone()
	name := strings.TrimSpace(def.Name)
	fail := func(field string, err error) (*Store, error) {
		return nil, &ConstructionError{Store: name, Field: field, Err: err}
	}
	if len(cfg.errs) > 0 {
		return fail("options", errors.Join(cfg.errs...))
	}
	if name == "" {
		return fail("Name", ErrMissingName)
	}
	def.Name = name
	if def.Default == nil {
		return fail("Default", ErrMissingDefault)
	}
	if backend == nil {
		backend = cache.NewMemory()
	}

	s := &Store{
		def:      def,
		backend:  backend,
		cfg:      cfg,
		state:    map[string]any{},
		declared: map[string]struct{}{},
		specs:    map[string]cast.Spec{},
		casts:    map[string]cast.Cast{},
		enums:    map[string]*enum.Type{},
	}

	if err := s.declare(); err != nil {
		return fail("Attributes", err)
	}
	if field, err := s.resolveEnums(); err != nil {
		return fail(field, err)
	}
	if field, err := s.resolveCasts(); err != nil {
		return fail(field, err)
	}
	methods, err := buildMethods(s.attributes)
	if err != nil {
		return fail("Attributes", err)
	}
	s.methods = methods

	for key := range def.Default() {
		if !s.Has(key) {
			return fail("Default", fmt.Errorf("%w %q", ErrUndeclaredAttribute, key))
		}
	}

	guards, engine, err := compileGuards(cfg, s.attributes)
	if err != nil {
		return fail("Guards", err)
	}
	s.guards = guards
	s.engine = engine
	s.emitter = activity.NewEmitter(cfg.activityHooks, cfg.activity)
	return s, nil
}

func (s *Store) declare() error {
	add := func(attr string) error {
		if strings.TrimSpace(attr) == "" || attr != strings.TrimSpace(attr) {
			return fmt.Errorf("statestore: invalid attribute name %q", attr)
		}
		s.declared[attr] = struct{}{}
		return nil
	}
	for _, attr := range s.def.Attributes {
		if err := add(attr); err != nil {
			return err
		}
	}
	for attr := range s.def.Casts {
		if err := add(attr); err != nil {
			return err
		}
	}
	for attr := range s.def.Enums {
		if err := add(attr); err != nil {
			return err
		}
	}
	s.attributes = make([]string, 0, len(s.declared))
	for attr := range s.declared {
		s.attributes = append(s.attributes, attr)
	}
	sort.Strings(s.attributes)
	return nil
}

func (s *Store) resolveEnums() (string, error) {
	for _, attr := range sortedKeys(s.def.Enums) {
		id := s.def.Enums[attr]
		t, ok := s.cfg.enums.Lookup(id)
		if !ok {
			return "Enums[" + attr + "]", fmt.Errorf("%w %q", ErrUnknownEnum, id)
		}
		s.enums[attr] = t
		s.specs[attr] = cast.Enum(t.Name())
	}
	return "", nil
}

func (s *Store) resolveCasts() (string, error) {
	for _, attr := range sortedKeys(s.def.Casts) {
		if _, ok := s.enums[attr]; ok {
			continue
		}
		spec := s.def.Casts[attr]
		field := "Casts[" + attr + "]"
		if spec.Kind == cast.SpecEnum {
			t, ok := s.cfg.enums.Lookup(spec.Name)
			if !ok {
				return field, fmt.Errorf("%w %q", ErrUnknownEnum, spec.Name)
			}
			s.enums[attr] = t
			s.specs[attr] = spec
			continue
		}
		c, err := s.cfg.casts.Resolve(spec)
		if err != nil {
			return field, err
		}
		s.casts[attr] = c
		s.specs[attr] = spec
	}
	return "", nil
}

// Name returns the store identity used in cache keys.
func (s *Store) Name() string { return s.def.Name }

// SetKey re-keys the store to a per-entity identity. Strings, integers and
// other scalars are accepted; nil clears the key. State is left untouched,
// call Rehydrate to load the new entry.
func (s *Store) SetKey(id any) *Store {
	if id == nil {
		s.instanceKey = ""
		return s
	}
	s.instanceKey = strings.TrimSpace(cast.ToString(id))
	return s
}

// InstanceKey returns the identity set with SetKey.
func (s *Store) InstanceKey() string { return s.instanceKey }

// Key returns the cache key for the store's current identity.
func (s *Store) Key() string { return CacheKey(s.def.Name, s.instanceKey) }

// Backend returns the cache the store reads and writes.
func (s *Store) Backend() cache.Backend { return s.backend }

// Default returns a fresh copy of the store's seed state.
func (s *Store) Default() map[string]any {
	return clone.State(s.def.Default())
}

// State returns a copy of the raw state.
func (s *Store) State() map[string]any {
	return clone.State(s.state)
}

// StateValue returns a copy of the raw value stored for key, or nil.
func (s *Store) StateValue(key string) any {
	return clone.Value(s.state[key])
}

// Attributes lists the declared attribute names in sorted order.
func (s *Store) Attributes() []string {
	return append([]string(nil), s.attributes...)
}

// Has reports whether name is a declared attribute.
func (s *Store) Has(name string) bool {
	_, ok := s.declared[name]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
