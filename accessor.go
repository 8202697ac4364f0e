package statestore

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

type method struct {
	attribute string
	setter    bool
}

// buildMethods maps lower-cased "get<Studly>"/"set<Studly>" names to their
// attribute. Method names match case-insensitively.
func buildMethods(attributes []string) (map[string]method, error) {
	methods := make(map[string]method, len(attributes)*2)
	owners := make(map[string]string, len(attributes))
	for _, attr := range attributes {
		studly := Studly(attr)
		if studly == "" {
			return nil, fmt.Errorf("statestore: attribute %q has no accessor name", attr)
		}
		folded := strings.ToLower(studly)
		if other, ok := owners[folded]; ok {
			return nil, fmt.Errorf("statestore: attributes %q and %q share accessor %q", other, attr, "get"+studly)
		}
		owners[folded] = attr
		methods["get"+folded] = method{attribute: attr}
		methods["set"+folded] = method{attribute: attr, setter: true}
	}
	return methods, nil
}

// Studly converts an attribute name into its accessor suffix:
// "user_name" and "user-name" become "UserName".
func Studly(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Invoke dispatches a dynamic accessor call such as "getUserName" or
// "setUserName". Getters take no arguments and return the typed value;
// setters take one argument and return the store for chaining.
func (s *Store) Invoke(name string, args ...any) (any, error) {
	m, ok := s.methods[strings.ToLower(name)]
	if !ok {
		return nil, &MethodError{Store: s.def.Name, Method: name, Err: s.missingMethod(name)}
	}
	if m.setter {
		if len(args) != 1 {
			return nil, &MethodError{Store: s.def.Name, Method: name, Err: fmt.Errorf("%w: want 1, got %d", ErrArgumentCount, len(args))}
		}
		if err := s.Set(m.attribute, args[0]); err != nil {
			return nil, &MethodError{Store: s.def.Name, Method: name, Err: err}
		}
		return s, nil
	}
	if len(args) != 0 {
		return nil, &MethodError{Store: s.def.Name, Method: name, Err: fmt.Errorf("%w: want 0, got %d", ErrArgumentCount, len(args))}
	}
	value, err := s.Get(m.attribute)
	if err != nil {
		return nil, &MethodError{Store: s.def.Name, Method: name, Err: err}
	}
	return value, nil
}

func (s *Store) missingMethod(name string) error {
	lower := strings.ToLower(name)
	if len(name) > 3 && (strings.HasPrefix(lower, "get") || strings.HasPrefix(lower, "set")) {
		return fmt.Errorf("%w %q", ErrUndeclaredAttribute, name[3:])
	}
	return ErrUnknownMethod
}

// Field is a typed handle on one attribute.
type Field[T any] struct {
	name string
}

// NewField returns a typed handle for attribute name. The handle is not
// bound to a store; it is checked on every call.
func NewField[T any](name string) Field[T] {
	return Field[T]{name: name}
}

// Name returns the attribute name.
func (f Field[T]) Name() string { return f.name }

// Get reads the attribute from s. A nil value yields the zero T.
func (f Field[T]) Get(s *Store) (T, error) {
	return Value[T](s, f.name)
}

// Set writes value to the attribute on s.
func (f Field[T]) Set(s *Store, value T) error {
	return s.Set(f.name, value)
}

// Value reads attribute name from s as T.
func Value[T any](s *Store, name string) (T, error) {
	var zero T
	value, err := s.Get(name)
	if err != nil || value == nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, &AttributeError{
			Store:     s.def.Name,
			Attribute: name,
			Op:        "get",
			Err:       fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, reflect.TypeFor[T](), value),
		}
	}
	return typed, nil
}
