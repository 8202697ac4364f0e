package statestore

import (
	"github.com/goliatone/go-statestore/internal/hydrate"
	"github.com/goliatone/go-statestore/internal/snapshot"
)

// Bind decodes the store's raw state into T using T's json tags. With
// strict set, state keys that T has no field for fail the decode.
func Bind[T any](s *Store, strict bool) (T, error) {
	var opts []hydrate.Option[T]
	if strict {
		opts = append(opts, hydrate.WithStrict[T]())
	}
	return hydrate.NewDecoder(opts...).Decode(hydrate.Context{Store: s.def.Name, Key: s.Key()}, s.state)
}

// Assign writes every field of value (a struct or map, flattened through its
// json form) with Set. Fields that are not declared attributes fail before
// anything is written.
func Assign(s *Store, value any) error {
	fields, err := hydrate.Flatten(value)
	if err != nil {
		return &AttributeError{Store: s.def.Name, Op: "assign", Err: err}
	}
	for _, name := range sortedKeys(fields) {
		if !s.Has(name) {
			return &AttributeError{Store: s.def.Name, Attribute: name, Op: "assign", Err: ErrUndeclaredAttribute}
		}
	}
	next := make(map[string]any, len(s.state))
	for name, raw := range s.state {
		next[name] = raw
	}
	for _, name := range sortedKeys(fields) {
		if err := s.setAttribute(next, name, snapshot.Normalize(fields[name])); err != nil {
			return &AttributeError{Store: s.def.Name, Attribute: name, Op: "assign", Err: err}
		}
	}
	s.state = next
	return nil
}

