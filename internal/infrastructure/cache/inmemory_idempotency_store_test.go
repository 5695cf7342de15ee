package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		fresh, err := store.MarkProcessed(ctx, "key-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.MarkProcessed(ctx, "key-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	t.Run("is processed reflects marks", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		processed, err := store.IsProcessed(ctx, "key-2")
		require.NoError(t, err)
		assert.False(t, processed)

		_, err = store.MarkProcessed(ctx, "key-2", time.Minute)
		require.NoError(t, err)

		processed, err = store.IsProcessed(ctx, "key-2")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("release allows re-mark", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "key-3", time.Minute)
		require.NoError(t, err)

		require.NoError(t, store.Release(ctx, "key-3"))

		fresh, err := store.MarkProcessed(ctx, "key-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("expired mark is reusable", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "key-4", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		processed, err := store.IsProcessed(ctx, "key-4")
		require.NoError(t, err)
		assert.False(t, processed)

		fresh, err := store.MarkProcessed(ctx, "key-4", time.Minute)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}
