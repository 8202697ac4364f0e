package activity

import (
	"maps"
	"strings"
	"time"
)

// Event describes one lifecycle occurrence. IDs are strings so call sites
// don't depend on a particular UUID type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Normalize returns a copy of e with trimmed identifiers, its own metadata
// map (nil when empty) and OccurredAt stamped when zero.
func (e Event) Normalize() Event {
	for _, field := range []*string{
		&e.Verb, &e.ActorID, &e.UserID, &e.TenantID,
		&e.ObjectType, &e.ObjectID, &e.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	if len(e.Metadata) == 0 {
		e.Metadata = nil
	} else {
		e.Metadata = maps.Clone(e.Metadata)
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// Routable reports whether e names a verb and an object. Hooks only see
// routable events.
func (e Event) Routable() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}
