package activity

import "context"

type actorKey struct{}

// Actor identifies who triggered a lifecycle operation.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// WithActor returns a context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom extracts the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// apply fills identity fields the event left empty.
func (a Actor) apply(event Event) Event {
	if event.ActorID == "" {
		event.ActorID = a.ActorID
	}
	if event.UserID == "" {
		event.UserID = a.UserID
	}
	if event.TenantID == "" {
		event.TenantID = a.TenantID
	}
	return event
}
