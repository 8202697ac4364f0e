package statestore

import (
	"reflect"
	"testing"
)

func TestDescribe(t *testing.T) {
	s := newPreferences(t, nil)
	got := map[string]AttributeDescriptor{}
	for _, desc := range s.Describe() {
		got[desc.Name] = desc
	}
	if len(got) != len(s.Attributes()) {
		t.Fatalf("expected one descriptor per attribute, got %d", len(got))
	}

	color := got["color"]
	if color.Kind != KindEnum || color.Spec != "enum:Color" || !reflect.DeepEqual([]string{"RED", "GREEN"}, color.Cases) {
		t.Fatalf("unexpected color descriptor %+v", color)
	}
	joined := got["joined_on"]
	if joined.Kind != KindCast || joined.Spec != "date" || joined.Getter != "getJoinedOn" || joined.Setter != "setJoinedOn" {
		t.Fatalf("unexpected joined_on descriptor %+v", joined)
	}
	if got["theme"].Kind != KindRaw || got["theme"].Spec != "" {
		t.Fatalf("unexpected theme descriptor %+v", got["theme"])
	}
}

func TestDescribeState(t *testing.T) {
	state := map[string]any{
		"theme":  "dark",
		"volume": int64(3),
		"status": map[string]any{
			"steps": []any{int64(1)},
			"meta":  map[string]any{},
			"done":  nil,
		},
	}
	want := []FieldDescriptor{
		{Path: "status.done", Type: "null"},
		{Path: "status.meta", Type: "object"},
		{Path: "status.steps", Type: "[]int64"},
		{Path: "theme", Type: "string"},
		{Path: "volume", Type: "int64"},
	}
	if got := DescribeState(state); !reflect.DeepEqual(want, got) {
		t.Fatalf("descriptor mismatch:\nwant: %#v\n got: %#v", want, got)
	}
	if got := DescribeState(nil); got == nil || len(got) != 0 {
		t.Fatalf("empty state should give an empty list, got %#v", got)
	}
}
