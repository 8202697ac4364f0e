// Package usersink forwards store activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-statestore/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards store lifecycle events to Sink so state writes show up in
// the user activity feed.
type Hook struct {
	Sink usertypes.ActivitySink
	// Data is merged into every record; event metadata wins on conflicts.
	Data map[string]any
}

// Notify maps the event into an ActivityRecord. Identifiers that are not
// UUIDs become uuid.Nil and keep their raw value under "<field>_raw".
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalize()
	if !event.Routable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := make(map[string]any, len(h.Data)+len(event.Metadata))
	maps.Copy(data, h.Data)
	maps.Copy(data, event.Metadata)

	record := usertypes.ActivityRecord{
		ActorID:    identity(data, "actor_id", event.ActorID),
		UserID:     identity(data, "user_id", event.UserID),
		TenantID:   identity(data, "tenant_id", event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}
	if len(data) > 0 {
		record.Data = data
	}
	return h.Sink.Log(ctx, record)
}

// identity parses raw as a UUID. Anything else is recorded in data under
// field+"_raw" and maps to uuid.Nil.
func identity(data map[string]any, field, raw string) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		data[field+"_raw"] = raw
		return uuid.Nil
	}
	return id
}
