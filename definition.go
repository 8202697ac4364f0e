package statestore

import (
	"context"
	"reflect"
	"strings"

	"github.com/goliatone/go-statestore/pkg/cast"
)

// Hook runs before the default persist or rehydrate step. Returning
// handled=true skips the default cache I/O; the hook then owns the state.
type Hook func(ctx context.Context, store *Store) (handled bool, err error)

// Definition declares a store type.
//
// Declared attributes are the union of Attributes and the keys of Casts and
// Enums. An attribute present in both Casts and Enums is enum mapped.
type Definition struct {
	// Name is the fully qualified store identity used in cache keys. See
	// TypeName.
	Name       string
	Attributes []string
	Casts      map[string]cast.Spec
	// Enums maps attribute names to enum type ids registered via WithEnums
	// or WithEnumRegistry.
	Enums map[string]string
	// Default returns the seed state. It is required and must only use
	// declared attributes.
	Default        func() map[string]any
	PersistUsing   Hook
	RehydrateUsing Hook
}

// TypeName returns the fully qualified name ("import/path.Type") of T, a
// stable identity for Definition.Name. Pointer types resolve to their
// element type.
func TypeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func (d Definition) clone() Definition {
	out := d
	out.Attributes = append([]string(nil), d.Attributes...)
	if d.Casts != nil {
		out.Casts = make(map[string]cast.Spec, len(d.Casts))
		for name, spec := range d.Casts {
			spec.Args = append([]string(nil), spec.Args...)
			out.Casts[name] = spec
		}
	}
	if d.Enums != nil {
		out.Enums = make(map[string]string, len(d.Enums))
		for name, id := range d.Enums {
			out.Enums[name] = id
		}
	}
	return out
}

// CacheKey renders the cache key for a store name and instance key. An
// empty instance key renders as "0".
func CacheKey(name, instanceKey string) string {
	if strings.TrimSpace(instanceKey) == "" {
		instanceKey = "0"
	}
	return "store_state_" + name + ":" + instanceKey
}
