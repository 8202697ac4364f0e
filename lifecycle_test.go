package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-statestore/internal/snapshot"
	"github.com/goliatone/go-statestore/pkg/activity"
	"github.com/goliatone/go-statestore/pkg/cache"
)

type rehydrateFixture struct {
	Cases []rehydrateCase `json:"cases"`
}

type rehydrateCase struct {
	Name      string          `json:"name"`
	Payload   string          `json:"payload"`
	Expect    json.RawMessage `json:"expect"`
	ExpectErr string          `json:"expect_err"`
}

func TestRehydrateFromFixtures(t *testing.T) {
	fx := loadRehydrateFixture(t, "rehydrate_cases.json")
	ctx := context.Background()

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			backend := cache.NewMemory()
			s := newPreferences(t, backend)
			if err := backend.Set(ctx, s.Key(), tc.Payload); err != nil {
				t.Fatalf("seed backend: %v", err)
			}

			err := s.Rehydrate(ctx)
			if tc.ExpectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				if len(s.State()) != 0 {
					t.Fatalf("failed rehydrate must leave state untouched, got %#v", s.State())
				}
				return
			}
			if err != nil {
				t.Fatalf("rehydrate: %v", err)
			}
			want, err := snapshot.DecodeObject(string(tc.Expect))
			if err != nil {
				t.Fatalf("decode expectation: %v", err)
			}
			if got := s.State(); !reflect.DeepEqual(want, got) {
				t.Fatalf("state mismatch:\nwant: %#v\n got: %#v", want, got)
			}
			if backend.Writes() != 1 {
				t.Fatalf("rehydrating an existing entry must not write, writes=%d", backend.Writes())
			}
		})
	}
}

func TestRehydrateErrorsCarryContext(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	s := newPreferences(t, backend)

	_ = backend.Set(ctx, s.Key(), `[1]`)
	err := s.Rehydrate(ctx)
	var snapshotErr *SnapshotError
	if !errors.As(err, &snapshotErr) || snapshotErr.Key != s.Key() {
		t.Fatalf("expected SnapshotError for %s, got %v", s.Key(), err)
	}
	if !errors.Is(err, snapshot.ErrNotObject) {
		t.Fatalf("expected ErrNotObject in chain, got %v", err)
	}

	_ = backend.Set(ctx, s.Key(), `{"color":"BLUE"}`)
	err = s.Rehydrate(ctx)
	var attrErr *AttributeError
	if !errors.As(err, &attrErr) || attrErr.Attribute != "color" || attrErr.Op != "rehydrate" {
		t.Fatalf("expected rehydrate AttributeError for color, got %v", err)
	}
	if !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("expected ErrInvalidEnumValue, got %v", err)
	}
}

func TestRehydrateSeedsDefaultOnMiss(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	s := newPreferences(t, backend)

	if err := s.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if got := s.State(); !reflect.DeepEqual(s.Default(), got) {
		t.Fatalf("state should equal default:\nwant: %#v\n got: %#v", s.Default(), got)
	}
	if backend.Writes() != 1 {
		t.Fatalf("expected exactly one write, got %d", backend.Writes())
	}
	payload, ok, err := backend.Get(ctx, s.Key())
	if err != nil || !ok {
		t.Fatalf("expected seeded entry, ok=%v err=%v", ok, err)
	}
	want, _ := snapshot.Encode(s.Default())
	if payload != want {
		t.Fatalf("unexpected payload:\nwant: %s\n got: %s", want, payload)
	}
}

func TestPersistFromDefaultResetsState(t *testing.T) {
	ctx := context.Background()
	s := newPreferences(t, nil)
	if err := s.Set("nickname", "neo"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.PersistFromDefault(ctx); err != nil {
		t.Fatalf("persist from default: %v", err)
	}
	if got := s.State(); !reflect.DeepEqual(s.Default(), got) {
		t.Fatalf("expected default state, got %#v", got)
	}
}

func TestPersistFromDefaultRejectsInvalidDefault(t *testing.T) {
	def := preferencesDefinition()
	def.Default = func() map[string]any { return map[string]any{"color": "BLUE"} }
	s, err := New(def, nil, WithEnums(colorEnum))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = s.Rehydrate(context.Background())
	var attrErr *AttributeError
	if !errors.As(err, &attrErr) || attrErr.Op != "default" {
		t.Fatalf("expected default AttributeError, got %v", err)
	}
}

type failingBackend struct {
	*cache.Memory
	hasErr error
	setErr error
}

func (b failingBackend) Has(ctx context.Context, key string) (bool, error) {
	if b.hasErr != nil {
		return false, b.hasErr
	}
	return b.Memory.Has(ctx, key)
}

func (b failingBackend) Set(ctx context.Context, key, value string) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.Memory.Set(ctx, key, value)
}

func TestBackendErrorsPropagateUnwrapped(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("cache down")

	s := newPreferences(t, failingBackend{Memory: cache.NewMemory(), setErr: errDown})
	if err := s.Persist(ctx); err != errDown {
		t.Fatalf("persist should return the backend error as-is, got %v", err)
	}
	if err := s.Rehydrate(ctx); err != errDown {
		t.Fatalf("seeding should return the backend error as-is, got %v", err)
	}

	s = newPreferences(t, failingBackend{Memory: cache.NewMemory(), hasErr: errDown})
	if err := s.Rehydrate(ctx); err != errDown {
		t.Fatalf("rehydrate should return the backend error as-is, got %v", err)
	}
}

type vanishingBackend struct{ *cache.Memory }

func (vanishingBackend) Has(context.Context, string) (bool, error) { return true, nil }

func TestRehydrateTreatsVanishedEntryAsMiss(t *testing.T) {
	backend := vanishingBackend{cache.NewMemory()}
	s := newPreferences(t, backend)
	if err := s.Rehydrate(context.Background()); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if backend.Writes() != 1 {
		t.Fatalf("expected default to be persisted, writes=%d", backend.Writes())
	}
}

func TestHooksBypassCacheIO(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	def := preferencesDefinition()
	var persisted, rehydrated int
	def.PersistUsing = func(_ context.Context, s *Store) (bool, error) {
		persisted++
		return true, nil
	}
	def.RehydrateUsing = func(_ context.Context, s *Store) (bool, error) {
		rehydrated++
		return true, s.Set("theme", "from-hook")
	}
	s, err := New(def, backend, WithEnums(colorEnum))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := s.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if persisted != 1 || rehydrated != 1 {
		t.Fatalf("hooks should run once each, persist=%d rehydrate=%d", persisted, rehydrated)
	}
	if backend.Writes() != 0 {
		t.Fatalf("handled hooks must skip cache writes, writes=%d", backend.Writes())
	}
	if got := s.StateValue("theme"); got != "from-hook" {
		t.Fatalf("hook owned state should remain, got %#v", got)
	}
}

func TestUnhandledHooksFallThroughAndErrorsStop(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	errHook := errors.New("hook failed")
	def := preferencesDefinition()
	def.PersistUsing = func(context.Context, *Store) (bool, error) { return false, nil }
	def.RehydrateUsing = func(context.Context, *Store) (bool, error) { return false, nil }
	s, err := New(def, backend, WithEnums(colorEnum))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if backend.Writes() != 1 {
		t.Fatalf("unhandled hooks should keep default io, writes=%d", backend.Writes())
	}

	def.PersistUsing = func(context.Context, *Store) (bool, error) { return false, errHook }
	s, _ = New(def, backend, WithEnums(colorEnum))
	if err := s.Persist(ctx); !errors.Is(err, errHook) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if backend.Writes() != 1 {
		t.Fatalf("failed hook must not write, writes=%d", backend.Writes())
	}
}

func TestDefaultFillCompletesStoredEntries(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	def := preferencesDefinition()
	def.Default = func() map[string]any {
		return map[string]any{
			"theme":  map[string]any{"mode": "light", "contrast": "normal"},
			"volume": int64(5),
		}
	}
	s, err := New(def, backend, WithEnums(colorEnum), WithDefaultFill())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = backend.Set(ctx, s.Key(), `{"theme":{"mode":"dark"}}`)

	if err := s.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	want := map[string]any{
		"theme":  map[string]any{"mode": "dark", "contrast": "normal"},
		"volume": int64(5),
	}
	if got := s.State(); !reflect.DeepEqual(want, got) {
		t.Fatalf("filled state mismatch:\nwant: %#v\n got: %#v", want, got)
	}

	plain, err := New(def, backend, WithEnums(colorEnum))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := plain.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if _, ok := plain.State()["volume"]; ok {
		t.Fatalf("without default fill missing keys stay absent")
	}
}

func TestLifecycleEmitsActivity(t *testing.T) {
	backend := cache.NewMemory()
	capture := &activity.CaptureHook{}
	s := newPreferences(t, backend, WithActivityHooks(capture))
	s.SetKey("u-1")
	ctx := activity.WithActor(context.Background(), activity.Actor{ActorID: "admin", TenantID: "acme"})

	if err := s.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if err := s.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}

	want := []string{activity.VerbPersisted, activity.VerbSeeded, activity.VerbRehydrated}
	if got := capture.Verbs(); !reflect.DeepEqual(want, got) {
		t.Fatalf("verbs mismatch:\nwant: %v\n got: %v", want, got)
	}
	event := capture.Events[0]
	if event.ObjectID != s.Key() || event.ObjectType != activity.ObjectTypeStore {
		t.Fatalf("unexpected object %s/%s", event.ObjectType, event.ObjectID)
	}
	if event.ActorID != "admin" || event.TenantID != "acme" {
		t.Fatalf("actor should come from context, got %+v", event)
	}
	if event.Channel != activity.DefaultChannel {
		t.Fatalf("unexpected channel %q", event.Channel)
	}
	if event.Metadata["instance_key"] != "u-1" || event.Metadata["bytes"] == nil {
		t.Fatalf("unexpected metadata %#v", event.Metadata)
	}
}

func TestActivityFailuresAreLoggedNotReturned(t *testing.T) {
	var events []LogEvent
	logger := LoggerFunc(func(event LogEvent) { events = append(events, event) })
	capture := &activity.CaptureHook{Err: errors.New("sink offline")}
	s := newPreferences(t, nil, WithActivityHooks(capture), WithLogger(logger))

	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("activity errors must not fail persist: %v", err)
	}
	var sawActivity bool
	for _, event := range events {
		if event.Op == "activity" && event.Err != nil {
			sawActivity = true
		}
	}
	if !sawActivity {
		t.Fatalf("expected an activity log event, got %+v", events)
	}
}

func TestActivityCanBeDisabled(t *testing.T) {
	capture := &activity.CaptureHook{}
	s := newPreferences(t, nil,
		WithActivityHooks(capture),
		WithActivityConfig(activity.Config{Enabled: false}),
	)
	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("disabled activity should not emit, got %d", len(capture.Events))
	}
}

func loadRehydrateFixture(t *testing.T, name string) rehydrateFixture {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var fx rehydrateFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return fx
}
