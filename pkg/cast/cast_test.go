package cast

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-statestore/internal/snapshot"
)

type coercionFixture struct {
	Cases []coercionCase `json:"cases"`
}

type coercionCase struct {
	Name  string          `json:"name"`
	Cast  string          `json:"cast"`
	Input json.RawMessage `json:"input"`
	Want  json.RawMessage `json:"want"`
}

func TestBuiltinCastsFollowCoercionFixture(t *testing.T) {
	fx := loadCoercionFixture(t, "coercion_cases.json")
	registry := DefaultRegistry()

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			caster, err := registry.Resolve(Spec{Kind: SpecBuiltin, Name: tc.Cast})
			if err != nil {
				t.Fatalf("resolve %q: %v", tc.Cast, err)
			}
			input := decodeFixtureValue(t, tc.Input)
			want := decodeFixtureValue(t, tc.Want)

			got, err := caster.Get("field", input)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("get(%#v) = %#v (%T), want %#v (%T)", input, got, got, want, want)
			}

			stored, err := caster.Set("field", input)
			if err != nil {
				t.Fatalf("set: %v", err)
			}
			roundtrip, err := caster.Get("field", stored)
			if err != nil {
				t.Fatalf("get after set: %v", err)
			}
			if !reflect.DeepEqual(roundtrip, want) {
				t.Fatalf("get(set(%#v)) = %#v, want %#v", input, roundtrip, want)
			}
		})
	}
}

func TestBoolCastSetThenGetYieldsTrue(t *testing.T) {
	stored, _ := Bool{}.Set("flag", 1)
	got, _ := Bool{}.Get("flag", stored)
	if got != true {
		t.Fatalf("expected true, got %#v", got)
	}
}

func TestIntegerCastSetParsesNumericString(t *testing.T) {
	stored, _ := Integer{}.Set("count", "42")
	if stored != int64(42) {
		t.Fatalf("expected stored int64(42), got %#v", stored)
	}
}

func TestJSONCastKeepsStringLiteralsReadable(t *testing.T) {
	stored, _ := JSON{}.Set("status", `"ready"`)
	if stored != `"ready"` {
		t.Fatalf("expected raw literal text, got %#v", stored)
	}
	got, _ := JSON{}.Get("status", stored)
	if got != "ready" {
		t.Fatalf("expected decoded string, got %#v", got)
	}
}

func TestJSONCastSetDecodesObjectText(t *testing.T) {
	stored, _ := JSON{}.Set("status", `{"a":1}`)
	want := map[string]any{"a": int64(1)}
	if !reflect.DeepEqual(stored, want) {
		t.Fatalf("expected %#v, got %#v", want, stored)
	}
}

func TestObjectCastPreservesKeyOrder(t *testing.T) {
	got, err := Object{}.Get("profile", `{"zeta":1,"alpha":{"y":true,"x":null},"list":[{"k":"v"}]}`)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	object, ok := got.(*OrderedObject)
	if !ok {
		t.Fatalf("expected *OrderedObject, got %T", got)
	}
	if keys := orderedKeys(object); !reflect.DeepEqual(keys, []string{"zeta", "alpha", "list"}) {
		t.Fatalf("unexpected key order %v", keys)
	}
	alpha, _ := object.Get("alpha")
	nested, ok := alpha.(*OrderedObject)
	if !ok {
		t.Fatalf("expected nested *OrderedObject, got %T", alpha)
	}
	if keys := orderedKeys(nested); !reflect.DeepEqual(keys, []string{"y", "x"}) {
		t.Fatalf("unexpected nested key order %v", keys)
	}
	list, _ := object.Get("list")
	items, ok := list.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one list item, got %#v", list)
	}
	if _, ok := items[0].(*OrderedObject); !ok {
		t.Fatalf("expected list objects to be ordered, got %T", items[0])
	}

	stored, err := Object{}.Set("profile", object)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != `{"zeta":1,"alpha":{"y":true,"x":null},"list":[{"k":"v"}]}` {
		t.Fatalf("expected ordered JSON text in state, got %#v", stored)
	}
}

func TestObjectCastSetKeepsTextOrder(t *testing.T) {
	stored, err := Object{}.Set("profile", " {\"zeta\": 1,\n \"alpha\": 2} ")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != `{"zeta":1,"alpha":2}` {
		t.Fatalf("expected compact text, got %#v", stored)
	}
	got, _ := Object{}.Get("profile", stored)
	if keys := orderedKeys(got.(*OrderedObject)); !reflect.DeepEqual(keys, []string{"zeta", "alpha"}) {
		t.Fatalf("unexpected key order %v", keys)
	}

	scalar, _ := Object{}.Set("profile", `"plain"`)
	if scalar != `"plain"` {
		t.Fatalf("scalars should be stored like JSON, got %#v", scalar)
	}
	if empty, _ := (Object{}).Set("profile", "not json"); empty != nil {
		t.Fatalf("invalid text should store nil, got %#v", empty)
	}
}

func TestObjectCastNilAndInvalid(t *testing.T) {
	for _, raw := range []any{nil, "", "not json"} {
		got, err := Object{}.Get("profile", raw)
		if err != nil {
			t.Fatalf("get(%#v): %v", raw, err)
		}
		if got != nil {
			t.Fatalf("get(%#v) expected nil, got %#v", raw, got)
		}
	}
}

func TestCollectionCastDecodesLists(t *testing.T) {
	got, err := CollectionCast{}.Get("items", `["b","a",3]`)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	collection := got.(*Collection)
	if !collection.IsList() || collection.Len() != 3 {
		t.Fatalf("expected list of 3, got list=%v len=%d", collection.IsList(), collection.Len())
	}
	if !reflect.DeepEqual(collection.Values(), []any{"b", "a", int64(3)}) {
		t.Fatalf("unexpected values %#v", collection.Values())
	}
	second, ok := collection.Index(1)
	if !ok || second != "a" {
		t.Fatalf("expected second item a, got %#v", second)
	}
	encoded, err := json.Marshal(collection)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `["b","a",3]` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestCollectionCastKeyedAndEmpty(t *testing.T) {
	got, _ := CollectionCast{}.Get("items", `{"z":1,"a":2}`)
	collection := got.(*Collection)
	if collection.IsList() {
		t.Fatalf("expected keyed collection")
	}
	if !reflect.DeepEqual(collection.Keys(), []string{"z", "a"}) {
		t.Fatalf("expected source key order, got %v", collection.Keys())
	}
	encoded, _ := json.Marshal(collection)
	if string(encoded) != `{"z":1,"a":2}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}

	empty, _ := CollectionCast{}.Get("items", nil)
	if empty.(*Collection).Len() != 0 {
		t.Fatalf("expected empty collection for nil")
	}
}

func TestCollectionCastSetStoresOrderedText(t *testing.T) {
	collection := NewCollection("x", map[string]any{"n": 1})
	stored, err := CollectionCast{}.Set("items", collection)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != `["x",{"n":1}]` {
		t.Fatalf("unexpected stored list %#v", stored)
	}

	keyed := NewCollection()
	keyed.Put("z", 1)
	keyed.Put("a", 2)
	stored, err = CollectionCast{}.Set("items", keyed)
	if err != nil {
		t.Fatalf("set keyed: %v", err)
	}
	if stored != `{"z":1,"a":2}` {
		t.Fatalf("unexpected stored object %#v", stored)
	}
	got, _ := CollectionCast{}.Get("items", keyed)
	if keys := got.(*Collection).Keys(); !reflect.DeepEqual(keys, []string{"z", "a"}) {
		t.Fatalf("expected source key order, got %v", keys)
	}
}

func TestCollectionCastAppliesItemCast(t *testing.T) {
	caster, err := DefaultRegistry().Resolve(Builtin(KindCollection, "integer"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, err := caster.Set("ids", []any{"1", 2.7, "x"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != "[1,2,0]" {
		t.Fatalf("unexpected stored items %#v", stored)
	}
	got, _ := caster.Get("ids", stored)
	if !reflect.DeepEqual(got.(*Collection).Values(), []any{int64(1), int64(2), int64(0)}) {
		t.Fatalf("unexpected items %#v", got.(*Collection).Values())
	}
}

func TestDateCastTruncatesToStartOfDay(t *testing.T) {
	got, err := Date{}.Get("birthday", "2024-03-09T17:45:12Z")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.(time.Time).Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	stored, err := Date{Layout: time.DateOnly}.Set("birthday", time.Date(2024, 3, 9, 23, 1, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != "2024-03-09" {
		t.Fatalf("expected date only text, got %#v", stored)
	}
	again, err := Date{}.Get("birthday", stored)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if !again.(time.Time).Equal(want) {
		t.Fatalf("expected %v after round trip, got %v", want, again)
	}
}

func TestDateCastsReadTheirOwnLayout(t *testing.T) {
	date := Date{Layout: "02/01/2006"}
	stored, err := date.Set("born", "2024-01-15T10:00:00Z")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != "15/01/2024" {
		t.Fatalf("expected layout text, got %#v", stored)
	}
	got, err := date.Get("born", stored)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.(time.Time).Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
	if again, err := date.Set("born", stored); err != nil || again != stored {
		t.Fatalf("stored text should set back unchanged, got %#v, %v", again, err)
	}

	compact := ImmutableDate{Layout: "20060102"}
	stored, err = compact.Set("seen", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("set compact: %v", err)
	}
	got, err = compact.Get("seen", stored)
	if err != nil {
		t.Fatalf("get compact: %v", err)
	}
	if !got.(time.Time).Equal(time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("layout should win over epoch seconds, got %v", got)
	}
}

func TestTimestampCastReturnsEpochSeconds(t *testing.T) {
	instant := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	stored, err := Timestamp{}.Set("seen_at", instant)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != int64(1700000000) {
		t.Fatalf("expected epoch seconds, got %#v", stored)
	}
	got, err := Timestamp{}.Get("seen_at", "2023-11-14T22:13:20Z")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != int64(1700000000) {
		t.Fatalf("expected epoch seconds from text, got %#v", got)
	}
	fromNumber, _ := Timestamp{}.Get("seen_at", float64(1700000000))
	if fromNumber != int64(1700000000) {
		t.Fatalf("expected numeric input to pass through, got %#v", fromNumber)
	}
}

func TestImmutableDateRoundTrip(t *testing.T) {
	instant := time.Date(2022, 1, 2, 3, 4, 5, 600, time.UTC)
	stored, err := ImmutableDate{}.Set("created_at", instant)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := ImmutableDate{}.Get("created_at", stored)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.(time.Time).Equal(instant) {
		t.Fatalf("expected %v, got %v", instant, got)
	}
}

func TestDateCastsTolerateNil(t *testing.T) {
	for _, caster := range []Cast{Date{}, Timestamp{}, ImmutableDate{}} {
		got, err := caster.Get("k", nil)
		if err != nil || got != nil {
			t.Fatalf("%T get(nil) = %#v, %v", caster, got, err)
		}
		stored, err := caster.Set("k", nil)
		if err != nil || stored != nil {
			t.Fatalf("%T set(nil) = %#v, %v", caster, stored, err)
		}
	}
}

func TestDateCastsRejectGarbage(t *testing.T) {
	for _, caster := range []Cast{Date{}, Timestamp{}, ImmutableDate{}} {
		_, err := caster.Get("k", "definitely not a date")
		if !errors.Is(err, ErrParse) {
			t.Fatalf("%T expected ErrParse, got %v", caster, err)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%T expected *ParseError, got %T", caster, err)
		}
		if parseErr.Key != "k" {
			t.Fatalf("expected key metadata, got %q", parseErr.Key)
		}
		if _, err := caster.Set("k", true); !errors.Is(err, ErrParse) {
			t.Fatalf("%T expected ErrParse for bool, got %v", caster, err)
		}
	}
}

func TestFuncPassesThroughWhenEmpty(t *testing.T) {
	var f Func
	got, _ := f.Get("k", 5)
	if got != 5 {
		t.Fatalf("expected passthrough, got %#v", got)
	}
	upper := Func{SetFunc: func(_ string, value any) (any, error) { return ToString(value) + "!", nil }}
	stored, _ := upper.Set("k", "hi")
	if stored != "hi!" {
		t.Fatalf("expected custom set, got %#v", stored)
	}
}

func orderedKeys(object *OrderedObject) []string {
	keys := []string{}
	for pair := object.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func decodeFixtureValue(t *testing.T, raw json.RawMessage) any {
	t.Helper()
	if len(raw) == 0 {
		return nil
	}
	value, err := snapshot.Decode(raw)
	if err != nil {
		t.Fatalf("decode fixture value %s: %v", raw, err)
	}
	return value
}

func loadCoercionFixture(t *testing.T, name string) coercionFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %q: %v", path, err)
	}
	var fx coercionFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("unmarshal fixture %q: %v", path, err)
	}
	return fx
}
