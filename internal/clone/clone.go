// Package clone deep copies the maps and slices that make up store state so
// callers can never alias the live state map.
package clone

import "reflect"

// Value returns a deep copy of value. Maps, slices, arrays, pointers and
// interfaces are copied recursively; unexported struct fields are left zero.
func Value[T any](value T) T {
	var zero T
	rv := reflect.ValueOf(&value).Elem()
	copied := cloneValue(rv)
	if !copied.IsValid() {
		return zero
	}
	out := reflect.New(rv.Type()).Elem()
	out.Set(copied)
	return out.Interface().(T)
}

// State copies a state map. A nil map yields an empty map.
func State(state map[string]any) map[string]any {
	if state == nil {
		return map[string]any{}
	}
	return Value(state)
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out
	case reflect.Struct:
		if !hasExportedOnly(v.Type()) {
			return v
		}
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			clone.Field(i).Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return v
	}
}

// hasExportedOnly reports whether every field of t can be set by reflection.
// Structs with private state (time.Time, ordered maps) are copied by value.
func hasExportedOnly(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return false
		}
	}
	return true
}
