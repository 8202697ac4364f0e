// Package cast defines the transformers that sit between the raw, JSON
// compatible values kept in store state and the typed values callers work
// with.
//
// Every Cast is bidirectional:
//
//	Get(key, raw)   -> typed value handed to callers
//	Set(key, value) -> raw value written into state
//
// Both directions must accept nil. Only the date based casts can fail (with a
// *ParseError); everything else coerces.
package cast

// Cast transforms one attribute between its stored and typed form.
type Cast interface {
	Get(key string, raw any) (any, error)
	Set(key string, value any) (any, error)
}

// Kind names a built-in cast.
type Kind string

const (
	KindBool          Kind = "bool"
	KindInteger       Kind = "integer"
	KindFloat         Kind = "float"
	KindString        Kind = "string"
	KindJSON          Kind = "json"
	KindObject        Kind = "object"
	KindCollection    Kind = "collection"
	KindDate          Kind = "date"
	KindTimestamp     Kind = "timestamp"
	KindImmutableDate Kind = "immutable_date"
)

// Func adapts plain functions to Cast. A nil function passes values through.
type Func struct {
	GetFunc func(key string, raw any) (any, error)
	SetFunc func(key string, value any) (any, error)
}

// Get implements Cast.
func (f Func) Get(key string, raw any) (any, error) {
	if f.GetFunc == nil {
		return raw, nil
	}
	return f.GetFunc(key, raw)
}

// Set implements Cast.
func (f Func) Set(key string, value any) (any, error) {
	if f.SetFunc == nil {
		return value, nil
	}
	return f.SetFunc(key, value)
}

// Bool applies truthiness coercion in both directions.
type Bool struct{}

func (Bool) Get(_ string, raw any) (any, error)   { return ToBool(raw), nil }
func (Bool) Set(_ string, value any) (any, error) { return ToBool(value), nil }

// Integer truncates numeric input to int64 in both directions.
type Integer struct{}

func (Integer) Get(_ string, raw any) (any, error)   { return ToInt(raw), nil }
func (Integer) Set(_ string, value any) (any, error) { return ToInt(value), nil }

// Float coerces numeric input to float64 in both directions.
type Float struct{}

func (Float) Get(_ string, raw any) (any, error)   { return ToFloat(raw), nil }
func (Float) Set(_ string, value any) (any, error) { return ToFloat(value), nil }

// String stringifies in both directions.
type String struct{}

func (String) Get(_ string, raw any) (any, error)   { return ToString(raw), nil }
func (String) Set(_ string, value any) (any, error) { return ToString(value), nil }
