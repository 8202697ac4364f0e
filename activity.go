package statestore

import (
	"context"

	"github.com/goliatone/go-statestore/pkg/activity"
)

type storeEventBuilder func(activity.StoreEventInput) activity.Event

// emit reports a lifecycle step to the configured activity hooks. Hook
// failures are logged and never fail the lifecycle call that triggered them.
func (s *Store) emit(ctx context.Context, build storeEventBuilder, handled bool, bytes int) {
	if !s.emitter.Enabled() {
		return
	}
	event := build(activity.StoreEventInput{
		Store:       s.def.Name,
		InstanceKey: s.instanceKey,
		CacheKey:    s.Key(),
		Attributes:  s.presentAttributes(),
		Handled:     handled,
		Bytes:       bytes,
		Channel:     s.emitter.Channel(),
		OccurredAt:  s.cfg.now(),
	})
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.cfg.logger.Log(LogEvent{
			Op:    "activity",
			Store: s.def.Name,
			Key:   s.Key(),
			Err:   err,
		})
	}
}

func (s *Store) presentAttributes() []string {
	present := make([]string, 0, len(s.state))
	for _, name := range s.attributes {
		if _, ok := s.state[name]; ok {
			present = append(present, name)
		}
	}
	return present
}
