package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}

func TestOpenCreatesTable(t *testing.T) {
	_, path := openTemp(t)

	sqlDB, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() {
		_ = sqlDB.Close()
	}()

	var name string
	err = sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'checkpoints'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "checkpoints", name)
}

func TestStore_Contract(t *testing.T) {
	store, _ := openTemp(t)
	ports.RunCheckpointStoreContract(t, store)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	ctx := context.Background()
	savedAt := time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.UTC)

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "s1", &domain.Checkpoint{
		Namespace: "todos",
		Entries:   map[string]json.RawMessage{"1": json.RawMessage(`{"id":"1","revision":3}`)},
		SavedAt:   savedAt,
	}))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer func() {
		_ = second.Close()
	}()

	cp, err := second.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Namespace("todos"), cp.Namespace)
	assert.Equal(t, savedAt, cp.SavedAt)
	assert.JSONEq(t, `{"id":"1","revision":3}`, string(cp.Entries["1"]))
}

func TestStore_ListOrdered(t *testing.T) {
	store, _ := openTemp(t)
	ctx := context.Background()

	for _, key := range []string{"b", "c", "a"} {
		require.NoError(t, store.Save(ctx, key, &domain.Checkpoint{Namespace: "todos"}))
	}

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestStore_SaveRequiresKey(t *testing.T) {
	store, _ := openTemp(t)
	assert.Error(t, store.Save(context.Background(), "", &domain.Checkpoint{}))
}
