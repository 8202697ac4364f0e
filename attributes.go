package statestore

import (
	"github.com/goliatone/go-statestore/internal/clone"
)

// Get returns the typed value of a declared attribute: enum attributes
// resolve to an enum.Case, cast attributes go through Cast.Get, everything
// else is the raw stored value.
func (s *Store) Get(name string) (any, error) {
	if !s.Has(name) {
		return nil, &AttributeError{Store: s.def.Name, Attribute: name, Op: "get", Err: ErrUndeclaredAttribute}
	}
	value, err := s.getAttribute(name)
	if err != nil {
		return nil, &AttributeError{Store: s.def.Name, Attribute: name, Op: "get", Err: err}
	}
	return value, nil
}

// Set stores value for a declared attribute after running it through the
// attribute's enum mapping or cast.
func (s *Store) Set(name string, value any) error {
	if !s.Has(name) {
		return &AttributeError{Store: s.def.Name, Attribute: name, Op: "set", Err: ErrUndeclaredAttribute}
	}
	if err := s.setAttribute(s.state, name, value); err != nil {
		err = &AttributeError{Store: s.def.Name, Attribute: name, Op: "set", Err: err}
		s.cfg.logger.Log(LogEvent{Op: "set", Store: s.def.Name, Key: s.Key(), Attribute: name, Err: err})
		return err
	}
	return nil
}

// getAttribute returns nil for undeclared names.
func (s *Store) getAttribute(name string) (any, error) {
	if !s.Has(name) {
		return nil, nil
	}
	raw := s.state[name]
	if t, ok := s.enums[name]; ok {
		if raw == nil {
			return nil, nil
		}
		return t.Resolve(raw)
	}
	if c, ok := s.casts[name]; ok {
		return c.Get(name, clone.Value(raw))
	}
	return clone.Value(raw), nil
}

// setAttribute writes the storable form of value into state. Nothing is
// written when the conversion fails.
func (s *Store) setAttribute(state map[string]any, name string, value any) error {
	raw, err := s.storable(name, value)
	if err != nil {
		return err
	}
	state[name] = raw
	return nil
}

func (s *Store) storable(name string, value any) (any, error) {
	if t, ok := s.enums[name]; ok {
		if value == nil {
			return nil, nil
		}
		return t.Storable(value)
	}
	if c, ok := s.casts[name]; ok {
		return c.Set(name, value)
	}
	return clone.Value(value), nil
}

// fill builds a fresh state from values, keeping declared keys only.
func (s *Store) fill(values map[string]any, op string) (map[string]any, error) {
	next := make(map[string]any, len(values))
	for _, name := range s.attributes {
		value, ok := values[name]
		if !ok {
			continue
		}
		if err := s.setAttribute(next, name, value); err != nil {
			return nil, &AttributeError{Store: s.def.Name, Attribute: name, Op: op, Err: err}
		}
	}
	return next, nil
}
