package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the defined interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	sample := func() *domain.Checkpoint {
		return &domain.Checkpoint{
			Namespace: "todos",
			Entries: map[string]json.RawMessage{
				"1": json.RawMessage(`{"id":"1","revision":2}`),
				"2": json.RawMessage(`{"id":"2","revision":0}`),
			},
			SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		cp := sample()
		require.NoError(t, store.Save(ctx, key, cp), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cp.Namespace, loaded.Namespace)
		assert.True(t, cp.SavedAt.Equal(loaded.SavedAt))
		require.Len(t, loaded.Entries, 2)
		assert.JSONEq(t, `{"id":"1","revision":2}`, string(loaded.Entries["1"]))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		cp := sample()
		delete(cp.Entries, "2")
		require.NoError(t, store.Save(ctx, key, cp))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded.Entries, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, sample()))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")
		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		require.NoError(t, store.Save(ctx, k1, sample()))
		require.NoError(t, store.Save(ctx, k2, sample()))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
