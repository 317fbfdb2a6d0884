package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContextStoreContract runs a suite of tests to verify that a ContextStore implementation
// adheres to the defined interface contract.
func RunContextStoreContract(t *testing.T, store ContextStore) {
	ctx := context.Background()
	sender := "contract-sender-" + time.Now().Format("20060102150405")

	t.Run("Lazy Creation", func(t *testing.T) {
		current, err := store.GetContext(ctx, sender+"-fresh")
		require.NoError(t, err)
		assert.Empty(t, current)

		stash, err := store.GetStash(ctx, sender+"-fresh")
		require.NoError(t, err)
		assert.Nil(t, stash)

		snap, err := store.Snapshot(ctx, sender+"-fresh")
		require.NoError(t, err)
		assert.Equal(t, sender+"-fresh", snap.Sender)
		assert.Empty(t, snap.Current)

		senders, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, senders, sender+"-fresh", "reads must not create conversations")
	})

	t.Run("Touch Creates", func(t *testing.T) {
		touched := sender + "-touched"
		require.NoError(t, store.Touch(ctx, touched))
		require.NoError(t, store.Touch(ctx, touched))

		senders, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, senders, touched)

		snap, err := store.Snapshot(ctx, touched)
		require.NoError(t, err)
		assert.Empty(t, snap.Current)
		assert.False(t, snap.UpdatedAt.IsZero())

		require.NoError(t, store.SetContext(ctx, touched, "order"))
		require.NoError(t, store.Touch(ctx, touched))
		current, err := store.GetContext(ctx, touched)
		require.NoError(t, err)
		assert.Equal(t, "order", current, "touch keeps the context")
	})

	t.Run("Set Records Previous", func(t *testing.T) {
		require.NoError(t, store.SetContext(ctx, sender, "order"))
		require.NoError(t, store.SetContext(ctx, sender, "order.item"))

		current, err := store.GetContext(ctx, sender)
		require.NoError(t, err)
		assert.Equal(t, "order.item", current)

		snap, err := store.Snapshot(ctx, sender)
		require.NoError(t, err)
		assert.Equal(t, "order", snap.Previous)
		assert.Equal(t, sender, snap.Sender)

		require.NoError(t, store.SetContext(ctx, sender, ""))
		snap, err = store.Snapshot(ctx, sender)
		require.NoError(t, err)
		assert.Empty(t, snap.Current)
		assert.Equal(t, "order.item", snap.Previous)
	})

	t.Run("Stash", func(t *testing.T) {
		require.NoError(t, store.Stash(ctx, sender, map[string]any{"size": "large"}))
		data, err := store.GetStash(ctx, sender)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"size": "large"}, data)
	})

	t.Run("Delete and List", func(t *testing.T) {
		other := sender + "-other"
		require.NoError(t, store.SetContext(ctx, other, "greet"))

		senders, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, senders, other)

		require.NoError(t, store.Delete(ctx, other))
		senders, err = store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, senders, other)

		current, err := store.GetContext(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, current, "deleted senders start over at the root")
	})

	t.Run("Parallel Senders", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := sender + "-p" + string(rune('a'+i))
				assert.NoError(t, store.SetContext(ctx, id, "order"))
				got, err := store.GetContext(ctx, id)
				assert.NoError(t, err)
				assert.Equal(t, "order", got)
			}(i)
		}
		wg.Wait()
	})
}
