package cache

import (
	"context"
	"time"
)

type timeoutBackend struct {
	next    Backend
	timeout time.Duration
}

// WithTimeout bounds every call on next with timeout. A non-positive timeout
// returns next unchanged. Optional capabilities of next stay reachable.
func WithTimeout(next Backend, timeout time.Duration) Backend {
	if next == nil || timeout <= 0 {
		return next
	}
	return &timeoutBackend{next: next, timeout: timeout}
}

func (b *timeoutBackend) Has(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.Has(ctx, key)
}

func (b *timeoutBackend) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.Get(ctx, key)
}

func (b *timeoutBackend) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.Set(ctx, key, value)
}

func (b *timeoutBackend) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return Delete(ctx, b.next, key)
}

func (b *timeoutBackend) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return Keys(ctx, b.next)
}
