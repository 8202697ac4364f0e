// Package enum models closed sets of named values and converts them to and
// from the primitives kept in store state.
//
// Three flavours exist: unit enums (stored by case name), string-backed and
// int-backed enums (stored by backing value).
package enum

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidValue marks values that do not belong to an enum.
var ErrInvalidValue = errors.New("enum: invalid value")

// Kind classifies how an enum stores its cases.
type Kind int

const (
	Unit Kind = iota
	String
	Int
)

func (k Kind) String() string {
	switch k {
	case Unit:
		return "unit"
	case String:
		return "string"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Case is one member of an enum. Cases are comparable, so two lookups of the
// same member are ==.
type Case struct {
	Enum  string
	Name  string
	Value any
}

func (c Case) String() string {
	return c.Enum + "::" + c.Name
}

// Type is an enum definition. Build it with NewUnit, NewString or NewInt.
type Type struct {
	name   string
	kind   Kind
	cases  []Case
	byName map[string]Case
	byText map[string]Case
	byInt  map[int64]Case
}

// Member pairs a case name with its backing value when building enums.
type Member[V string | int64] struct {
	Name  string
	Value V
}

// NewUnit builds an enum whose cases are stored by name.
func NewUnit(name string, cases ...string) (*Type, error) {
	t, err := newType(name, Unit)
	if err != nil {
		return nil, err
	}
	for _, caseName := range cases {
		if err := t.add(caseName, caseName); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewString builds a string-backed enum.
func NewString(name string, members ...Member[string]) (*Type, error) {
	t, err := newType(name, String)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if err := t.add(member.Name, member.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewInt builds an int-backed enum.
func NewInt(name string, members ...Member[int64]) (*Type, error) {
	t, err := newType(name, Int)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if err := t.add(member.Name, member.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Must panics when err is non-nil. Intended for package level declarations.
func Must(t *Type, err error) *Type {
	if err != nil {
		panic(err)
	}
	return t
}

func newType(name string, kind Kind) (*Type, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("enum: name must not be empty")
	}
	return &Type{
		name:   name,
		kind:   kind,
		byName: make(map[string]Case),
		byText: make(map[string]Case),
		byInt:  make(map[int64]Case),
	}, nil
}

func (t *Type) add(name string, value any) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("enum: %s case name must not be empty", t.name)
	}
	if _, exists := t.byName[name]; exists {
		return fmt.Errorf("enum: %s case %q declared twice", t.name, name)
	}
	c := Case{Enum: t.name, Name: name, Value: value}
	switch typed := value.(type) {
	case string:
		if _, exists := t.byText[typed]; exists {
			return fmt.Errorf("enum: %s backing value %q declared twice", t.name, typed)
		}
		t.byText[typed] = c
	case int64:
		if _, exists := t.byInt[typed]; exists {
			return fmt.Errorf("enum: %s backing value %d declared twice", t.name, typed)
		}
		t.byInt[typed] = c
	}
	t.byName[name] = c
	t.cases = append(t.cases, c)
	return nil
}

// Name returns the enum type identifier.
func (t *Type) Name() string { return t.name }

// Kind returns how cases are stored.
func (t *Type) Kind() Kind { return t.kind }

// Cases returns the cases in declaration order.
func (t *Type) Cases() []Case {
	out := make([]Case, len(t.cases))
	copy(out, t.cases)
	return out
}

// Case looks up a case by name.
func (t *Type) Case(name string) (Case, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// MustCase returns the named case or panics.
func (t *Type) MustCase(name string) Case {
	c, ok := t.Case(name)
	if !ok {
		panic(fmt.Sprintf("enum: %s has no case %q", t.name, name))
	}
	return c
}

// Resolve maps a raw primitive to its case. Backed enums match the backing
// value (int enums also accept integral floats and numeric strings); unit
// enums match the case name. A Case of this enum resolves to itself.
func (t *Type) Resolve(raw any) (Case, error) {
	if c, ok := raw.(Case); ok {
		if c.Enum != t.name {
			return Case{}, t.invalid(raw, fmt.Sprintf("case belongs to %s", c.Enum))
		}
		if _, known := t.byName[c.Name]; !known {
			return Case{}, t.invalid(raw, "unknown case")
		}
		return t.byName[c.Name], nil
	}
	switch t.kind {
	case Int:
		i, ok := integral(raw)
		if !ok {
			return Case{}, t.invalid(raw, "not an integer")
		}
		if c, found := t.byInt[i]; found {
			return c, nil
		}
	default:
		text, ok := raw.(string)
		if !ok {
			return Case{}, t.invalid(raw, "not a string")
		}
		index := t.byText
		if t.kind == Unit {
			index = t.byName
		}
		if c, found := index[text]; found {
			return c, nil
		}
	}
	return Case{}, t.invalid(raw, "no matching case")
}

// Storable returns the primitive kept in state for value, which may be a
// Case or a raw primitive.
func (t *Type) Storable(value any) (any, error) {
	c, err := t.Resolve(value)
	if err != nil {
		return nil, err
	}
	return c.Value, nil
}

func (t *Type) invalid(value any, reason string) error {
	return &InvalidValueError{Enum: t.name, Value: value, Reason: reason}
}

func integral(raw any) (int64, bool) {
	switch typed := raw.(type) {
	case int:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint:
		return int64(typed), typed <= math.MaxInt64
	case uint8:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint64:
		return int64(typed), typed <= math.MaxInt64
	case float32:
		return integral(float64(typed))
	case float64:
		if typed != math.Trunc(typed) || math.IsInf(typed, 0) || typed > math.MaxInt64 || typed < math.MinInt64 {
			return 0, false
		}
		return int64(typed), true
	case json.Number:
		return integral(typed.String())
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// InvalidValueError reports a value outside an enum.
type InvalidValueError struct {
	Enum   string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("enum: %v is not a valid %s (%s)", e.Value, e.Enum, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidValue) match.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}
