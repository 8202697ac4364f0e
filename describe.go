package statestore

import (
	"fmt"
	"sort"
	"strings"
)

// Attribute kinds reported by Describe.
const (
	KindRaw  = "raw"
	KindCast = "cast"
	KindEnum = "enum"
)

// AttributeDescriptor documents one declared attribute.
type AttributeDescriptor struct {
	Name   string
	Kind   string
	Spec   string
	Cases  []string
	Getter string
	Setter string
}

// Describe lists the declared attributes in sorted order with how each
// one is converted.
func (s *Store) Describe() []AttributeDescriptor {
	out := make([]AttributeDescriptor, 0, len(s.attributes))
	for _, name := range s.attributes {
		studly := Studly(name)
		desc := AttributeDescriptor{
			Name:   name,
			Kind:   KindRaw,
			Getter: "get" + studly,
			Setter: "set" + studly,
		}
		if t, ok := s.enums[name]; ok {
			desc.Kind = KindEnum
			desc.Spec = s.specs[name].String()
			for _, c := range t.Cases() {
				desc.Cases = append(desc.Cases, c.Name)
			}
		} else if _, ok := s.casts[name]; ok {
			desc.Kind = KindCast
			desc.Spec = s.specs[name].String()
		}
		out = append(out, desc)
	}
	return out
}

// FieldDescriptor is a dotted path in a state payload and the Go type found
// there.
type FieldDescriptor struct {
	Path string
	Type string
}

// DescribeState walks a raw state payload and reports its leaf paths in
// sorted order. Lists report their first element's type.
func DescribeState(state map[string]any) []FieldDescriptor {
	fields := deriveFieldDescriptors(state, "")
	if fields == nil {
		return []FieldDescriptor{}
	}
	return fields
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "object"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		element := "any"
		if len(typed) > 0 {
			element = valueTypeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + element}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: valueTypeName(typed)}}
	}
}

func valueTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
