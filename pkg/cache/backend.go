package cache

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("cache: backend closed")

// Backend is the key-value contract consumed by stores.
type Backend interface {
	// Has reports whether key holds a value.
	Has(ctx context.Context, key string) (bool, error)
	// Get returns the value for key. ok is false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Deleter is implemented by backends that can remove entries. Deleting a
// missing key is not an error.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by backends that can enumerate keys.
type Lister interface {
	// Keys returns every stored key, sorted.
	Keys(ctx context.Context) ([]string, error)
}

// Delete removes key when backend supports it.
func Delete(ctx context.Context, backend Backend, key string) error {
	deleter, ok := backend.(Deleter)
	if !ok {
		return errors.ErrUnsupported
	}
	return deleter.Delete(ctx, key)
}

// Keys lists keys when backend supports it.
func Keys(ctx context.Context, backend Backend) ([]string, error) {
	lister, ok := backend.(Lister)
	if !ok {
		return nil, errors.ErrUnsupported
	}
	return lister.Keys(ctx)
}
