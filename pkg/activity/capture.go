package activity

import (
	"context"
	"sync"
)

// CaptureHook records events in memory. Tests use it to assert on what a
// store emitted; Err, when set, is returned from every Notify.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

// Notify implements ActivityHook.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event.Normalize())
	return h.Err
}

// Verbs lists the verbs recorded so far, oldest first.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.Events))
	for i := range h.Events {
		out[i] = h.Events[i].Verb
	}
	return out
}

// Last returns the most recent event.
func (h *CaptureHook) Last() (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Events) == 0 {
		return Event{}, false
	}
	return h.Events[len(h.Events)-1], true
}
