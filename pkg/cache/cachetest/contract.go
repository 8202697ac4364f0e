// Package cachetest holds the behavioural contract every cache.Backend must
// satisfy, shared by the backend test suites.
package cachetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-statestore/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend for one subtest.
type Factory func(t *testing.T) cache.Backend

// Run exercises backend semantics: missing keys, round trips, overwrites,
// awkward keys, optional Delete/Keys and concurrent writers.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		has, err := backend.Has(ctx, "store_state_missing:0")
		require.NoError(t, err)
		assert.False(t, has)

		value, ok, err := backend.Get(ctx, "store_state_missing:0")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		require.NoError(t, backend.Set(ctx, "store_state_app.Prefs:42", `{"theme":"dark"}`))

		has, err := backend.Has(ctx, "store_state_app.Prefs:42")
		require.NoError(t, err)
		assert.True(t, has)

		value, ok, err := backend.Get(ctx, "store_state_app.Prefs:42")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"theme":"dark"}`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		require.NoError(t, backend.Set(ctx, "k", `{"v":1}`))
		require.NoError(t, backend.Set(ctx, "k", `{"v":2}`))

		value, ok, err := backend.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"v":2}`, value)
	})

	t.Run("empty value is present", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		require.NoError(t, backend.Set(ctx, "k", ""))
		value, ok, err := backend.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, value)
	})

	t.Run("awkward keys", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		keys := []string{"a/b\\c", "store_state_pkg/path.Type:user 7", "ключ:ü", "../escape"}
		for i, key := range keys {
			require.NoError(t, backend.Set(ctx, key, fmt.Sprintf(`{"i":%d}`, i)))
		}
		for i, key := range keys {
			value, ok, err := backend.Get(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok, key)
			assert.Equal(t, fmt.Sprintf(`{"i":%d}`, i), value)
		}
	})

	t.Run("delete and keys", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)
		if _, ok := backend.(cache.Deleter); !ok {
			t.Skip("backend does not delete")
		}
		if _, ok := backend.(cache.Lister); !ok {
			t.Skip("backend does not list")
		}

		require.NoError(t, backend.Set(ctx, "b", "{}"))
		require.NoError(t, backend.Set(ctx, "a", "{}"))

		keys, err := cache.Keys(ctx, backend)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)

		require.NoError(t, cache.Delete(ctx, backend, "a"))
		require.NoError(t, cache.Delete(ctx, backend, "never-set"))

		keys, err = cache.Keys(ctx, backend)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, keys)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("k%d", i%4)
				assert.NoError(t, backend.Set(ctx, key, fmt.Sprintf(`{"i":%d}`, i)))
				_, _, err := backend.Get(ctx, key)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		for i := 0; i < 4; i++ {
			has, err := backend.Has(ctx, fmt.Sprintf("k%d", i))
			require.NoError(t, err)
			assert.True(t, has)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		backend := newBackend(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := backend.Set(ctx, "k", "{}")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
