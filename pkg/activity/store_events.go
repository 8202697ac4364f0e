package activity

import (
	"maps"
	"sort"
	"strings"
	"time"
)

// Lifecycle verbs and the object type used for store events.
const (
	VerbPersisted  = "store.persisted"
	VerbRehydrated = "store.rehydrated"
	VerbSeeded     = "store.seeded"

	ObjectTypeStore = "store"
)

// StoreEventInput describes the store a lifecycle event is about.
type StoreEventInput struct {
	Store       string
	InstanceKey string
	CacheKey    string
	Attributes  []string
	Handled     bool
	Bytes       int
	Channel     string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// BuildStorePersistedEvent reports a state write (or a hook that handled it).
func BuildStorePersistedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbPersisted, input)
}

// BuildStoreRehydratedEvent reports state loaded from an existing entry.
func BuildStoreRehydratedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbRehydrated, input)
}

// BuildStoreSeededEvent reports state seeded from the store default.
func BuildStoreSeededEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbSeeded, input)
}

func buildStoreEvent(verb string, input StoreEventInput) Event {
	metadata := make(map[string]any, len(input.Metadata)+5)
	maps.Copy(metadata, input.Metadata)
	metadata["store"] = strings.TrimSpace(input.Store)
	metadata["instance_key"] = strings.TrimSpace(input.InstanceKey)
	if len(input.Attributes) > 0 {
		attributes := append([]string{}, input.Attributes...)
		sort.Strings(attributes)
		metadata["attributes"] = attributes
	}
	if input.Handled {
		metadata["handled"] = true
	}
	if input.Bytes > 0 {
		metadata["bytes"] = input.Bytes
	}

	objectID := strings.TrimSpace(input.CacheKey)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Store)
	}
	if objectID == "" {
		objectID = ObjectTypeStore
	}

	return Event{
		Verb:       verb,
		ObjectType: ObjectTypeStore,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
