package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEventNormalize(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " store.persisted ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " store ",
		ObjectID:   " store_state_app.Prefs:0 ",
		Channel:    " statestore ",
		Metadata:   meta,
	}

	got := evt.Normalize()

	if got.Verb != "store.persisted" || got.ObjectType != "store" || got.ObjectID != "store_state_app.Prefs:0" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "statestore" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	if !got.Routable() {
		t.Fatalf("expected normalized event to be routable")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
	if evt.Verb != " store.persisted " {
		t.Fatalf("expected receiver untouched, got %q", evt.Verb)
	}
	if (Event{Metadata: map[string]any{}}).Normalize().Metadata != nil {
		t.Fatalf("expected empty metadata to normalize to nil")
	}
}

func TestHooksCompact(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{nil, capture, nil}
	compacted := hooks.Compact()
	if len(compacted) != 1 || compacted[0] != capture {
		t.Fatalf("unexpected compacted hooks: %v", compacted)
	}
	if hooks[0] != nil || hooks[1] != capture {
		t.Fatalf("expected original slice untouched: %v", hooks)
	}
	if Hooks(nil).Compact() != nil || (Hooks{nil}).Compact() != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestCaptureHookLast(t *testing.T) {
	capture := &CaptureHook{}
	if _, ok := capture.Last(); ok {
		t.Fatalf("expected no last event")
	}
	hooks := Hooks{capture}
	for _, verb := range []string{VerbSeeded, VerbPersisted} {
		if err := hooks.Notify(context.Background(), Event{Verb: verb, ObjectType: ObjectTypeStore, ObjectID: "1"}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	last, ok := capture.Last()
	if !ok || last.Verb != VerbPersisted {
		t.Fatalf("unexpected last event: %+v", last)
	}
	verbs := capture.Verbs()
	if len(verbs) != 2 || verbs[0] != VerbSeeded {
		t.Fatalf("unexpected verbs: %v", verbs)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: "store.persisted"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected incomplete event to be dropped")
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: VerbPersisted, ObjectType: ObjectTypeStore, ObjectID: "1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), Event{Verb: VerbSeeded, ObjectType: ObjectTypeStore, ObjectID: "1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter without hooks to stay disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), Event{Verb: VerbSeeded, ObjectType: ObjectTypeStore, ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterPreservesExplicitChannelAndTimestamp(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "audit"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbPersisted,
		ObjectType: ObjectTypeStore,
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", capture.Events[0].Channel)
	}
	if !capture.Events[0].OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", capture.Events[0].OccurredAt)
	}
	if emitter.Channel() != "audit" {
		t.Fatalf("expected configured channel, got %q", emitter.Channel())
	}
}

func TestEmitterAppliesActorFromContext(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	ctx := WithActor(context.Background(), Actor{ActorID: "a-1", UserID: "u-1", TenantID: "t-1"})

	err := emitter.Emit(ctx, Event{Verb: VerbPersisted, ObjectType: ObjectTypeStore, ObjectID: "1", UserID: "explicit"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events[0]
	if got.ActorID != "a-1" || got.TenantID != "t-1" {
		t.Fatalf("expected actor identity applied, got %+v", got)
	}
	if got.UserID != "explicit" {
		t.Fatalf("expected explicit user id to win, got %q", got.UserID)
	}
	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatalf("expected no actor on bare context")
	}
}
