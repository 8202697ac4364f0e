package statestore

import (
	"context"
	"time"

	"github.com/goliatone/go-statestore/internal/merge"
	"github.com/goliatone/go-statestore/internal/snapshot"
	"github.com/goliatone/go-statestore/pkg/activity"
)

// Rehydrate loads state from the cache entry at Key. When no entry exists
// the default state is seeded and persisted. Stored keys that are not
// declared attributes are dropped. A RehydrateUsing hook that reports
// handled skips all of this.
func (s *Store) Rehydrate(ctx context.Context) error {
	start := s.cfg.now()
	handled, err := s.runHook(ctx, s.def.RehydrateUsing)
	if err != nil || handled {
		s.logLifecycle("rehydrate", start, handled, err)
		return err
	}

	payload, found, err := s.load(ctx)
	if err != nil {
		s.logLifecycle("rehydrate", start, false, err)
		return err
	}
	if !found {
		if err := s.PersistFromDefault(ctx); err != nil {
			s.logLifecycle("seed", start, false, err)
			return err
		}
		s.logLifecycle("seed", start, false, nil)
		s.emit(ctx, activity.BuildStoreSeededEvent, false, 0)
		return nil
	}

	decoded, err := snapshot.DecodeObject(payload)
	if err != nil {
		err = &SnapshotError{Store: s.def.Name, Key: s.Key(), Err: err}
		s.logLifecycle("rehydrate", start, false, err)
		return err
	}
	if s.cfg.defaultFill {
		decoded = merge.Layers(decoded, s.defaultRaw())
	}
	next, err := s.fill(decoded, "rehydrate")
	if err != nil {
		s.logLifecycle("rehydrate", start, false, err)
		return err
	}
	s.state = next
	s.logLifecycle("rehydrate", start, false, nil)
	s.emit(ctx, activity.BuildStoreRehydratedEvent, false, len(payload))
	return nil
}

// Persist writes the current state to the cache entry at Key. A
// PersistUsing hook that reports handled skips the write. Guards run before
// the write; backend errors are returned as-is.
func (s *Store) Persist(ctx context.Context) error {
	start := s.cfg.now()
	handled, err := s.runHook(ctx, s.def.PersistUsing)
	if err != nil {
		s.logLifecycle("persist", start, false, err)
		return err
	}
	if handled {
		s.logLifecycle("persist", start, true, nil)
		s.emit(ctx, activity.BuildStorePersistedEvent, true, 0)
		return nil
	}

	if err := s.checkGuards(); err != nil {
		s.logLifecycle("persist", start, false, err)
		return err
	}
	payload, err := snapshot.Encode(s.state)
	if err != nil {
		err = &SnapshotError{Store: s.def.Name, Key: s.Key(), Err: err}
		s.logLifecycle("persist", start, false, err)
		return err
	}
	if err := s.backend.Set(ctx, s.Key(), payload); err != nil {
		s.logLifecycle("persist", start, false, err)
		return err
	}
	s.logLifecycle("persist", start, false, nil)
	s.emit(ctx, activity.BuildStorePersistedEvent, false, len(payload))
	return nil
}

// PersistFromDefault replaces the state with Default and persists it.
func (s *Store) PersistFromDefault(ctx context.Context) error {
	next, err := s.fill(s.def.Default(), "default")
	if err != nil {
		return err
	}
	s.state = next
	return s.Persist(ctx)
}

// defaultRaw returns Default in its stored form. Values that fail their
// cast are left out; PersistFromDefault reports those.
func (s *Store) defaultRaw() map[string]any {
	seed := s.def.Default()
	raw := make(map[string]any, len(seed))
	for _, name := range s.attributes {
		value, ok := seed[name]
		if !ok {
			continue
		}
		if stored, err := s.storable(name, value); err == nil {
			raw[name] = stored
		}
	}
	return raw
}

// load treats a Has hit followed by a Get miss as a miss; the entry was
// removed between the two calls.
func (s *Store) load(ctx context.Context) (string, bool, error) {
	key := s.Key()
	exists, err := s.backend.Has(ctx, key)
	if err != nil || !exists {
		return "", false, err
	}
	return s.backend.Get(ctx, key)
}

func (s *Store) runHook(ctx context.Context, hook Hook) (bool, error) {
	if hook == nil {
		return false, nil
	}
	return hook(ctx, s)
}

func (s *Store) logLifecycle(op string, start time.Time, handled bool, err error) {
	s.cfg.logger.Log(LogEvent{
		Op:       op,
		Store:    s.def.Name,
		Key:      s.Key(),
		Handled:  handled,
		Duration: s.cfg.now().Sub(start),
		Err:      err,
	})
}
