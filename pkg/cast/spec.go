package cast

import (
	"fmt"
	"strings"
)

// SpecKind tags the variant held by a Spec.
type SpecKind int

const (
	SpecBuiltin SpecKind = iota
	SpecCustom
	SpecEnum
	SpecInstance
)

func (k SpecKind) String() string {
	switch k {
	case SpecBuiltin:
		return "builtin"
	case SpecCustom:
		return "custom"
	case SpecEnum:
		return "enum"
	case SpecInstance:
		return "instance"
	default:
		return fmt.Sprintf("SpecKind(%d)", int(k))
	}
}

// Spec declares how an attribute is cast. Name is the registry name for
// builtin and custom casts and the enum type id for enum casts; Instance is
// only set for SpecInstance.
type Spec struct {
	Kind     SpecKind
	Name     string
	Args     []string
	Instance Cast
}

// Builtin references a built-in cast by kind.
func Builtin(kind Kind, args ...string) Spec {
	return Spec{Kind: SpecBuiltin, Name: string(kind), Args: args}
}

// Custom references a cast registered under typeID.
func Custom(typeID string, args ...string) Spec {
	return Spec{Kind: SpecCustom, Name: typeID, Args: args}
}

// Enum maps the attribute through the enum registered as typeID.
func Enum(typeID string) Spec {
	return Spec{Kind: SpecEnum, Name: typeID}
}

// Use wraps an already constructed cast.
func Use(instance Cast) Spec {
	return Spec{Kind: SpecInstance, Instance: instance}
}

// ParseSpec reads the "name:arg1,arg2" notation. "enum:<type>" yields an
// enum spec, built-in names (and aliases) yield builtin specs and anything
// else is a custom cast id.
func ParseSpec(text string) (Spec, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Spec{}, fmt.Errorf("cast: empty cast specifier")
	}
	name, rest, hasArgs := strings.Cut(trimmed, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Spec{}, fmt.Errorf("cast: specifier %q has no cast name", text)
	}
	var args []string
	if hasArgs {
		for _, arg := range strings.Split(rest, ",") {
			args = append(args, strings.TrimSpace(arg))
		}
	}
	if strings.EqualFold(name, "enum") {
		if len(args) != 1 || args[0] == "" {
			return Spec{}, fmt.Errorf("cast: specifier %q must name exactly one enum type", text)
		}
		return Enum(args[0]), nil
	}
	if kind, ok := builtinKind(name); ok {
		return Builtin(kind, args...), nil
	}
	return Custom(name, args...), nil
}

// String renders the spec in the "name:arg1,arg2" notation.
func (s Spec) String() string {
	switch s.Kind {
	case SpecEnum:
		return "enum:" + s.Name
	case SpecInstance:
		if s.Instance == nil {
			return "instance:<nil>"
		}
		return fmt.Sprintf("instance:%T", s.Instance)
	}
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + ":" + strings.Join(s.Args, ",")
}

var aliases = map[string]Kind{
	"bool":           KindBool,
	"boolean":        KindBool,
	"int":            KindInteger,
	"integer":        KindInteger,
	"float":          KindFloat,
	"double":         KindFloat,
	"real":           KindFloat,
	"string":         KindString,
	"json":           KindJSON,
	"array":          KindJSON,
	"object":         KindObject,
	"collection":     KindCollection,
	"date":           KindDate,
	"timestamp":      KindTimestamp,
	"immutable_date": KindImmutableDate,
	"datetime":       KindImmutableDate,
}

func builtinKind(name string) (Kind, bool) {
	kind, ok := aliases[strings.ToLower(name)]
	return kind, ok
}
