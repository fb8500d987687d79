package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

func TestRelationshipStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relationships.json")
	store := NewRelationshipStore(path)
	ctx := context.Background()

	relationships := []*entities.Relationship{
		{ID: "r1", FromID: "a", ToID: "b", Type: entities.ConnectionBlocks, Created: time.Now().UTC()},
		{ID: "r2", FromID: "b", ToID: "a", Type: entities.ConnectionBlockedBy, Created: time.Now().UTC(),
			Metadata: map[string]interface{}{"reverse_link": true}},
	}

	require.NoError(t, store.WriteAll(ctx, relationships))

	loaded, err := store.ReadAll(ctx)
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Equal(t, "r1", loaded[0].ID)
	assert.Equal(t, entities.ConnectionBlocks, loaded[0].Type)
	assert.True(t, loaded[1].IsReverse())
}

func TestRelationshipStore_MissingFileIsEmpty(t *testing.T) {
	store := NewRelationshipStore(filepath.Join(t.TempDir(), "nope.json"))

	loaded, err := store.ReadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRelationshipStore_LegacyBareArrayMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relationships.json")
	legacy := `[{"id":"r1","from_id":"a","to_id":"b","type":"related"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store := NewRelationshipStore(path)
	ctx := context.Background()

	loaded, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "r1", loaded[0].ID)

	// The next write upgrades the file to the envelope format
	require.NoError(t, store.WriteAll(ctx, loaded))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 1`)

	again, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "r1", again[0].ID)
}

func TestRelationshipStore_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relationships.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "records": []}`), 0o644))

	_, err := NewRelationshipStore(path).ReadAll(context.Background())

	assert.True(t, pkgerrors.IsPersistence(err))
}

func TestHierarchyStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.json")
	store := NewHierarchyStore(path)
	ctx := context.Background()

	nodes := []*entities.HierarchyNode{
		{ID: "m1", Title: "Release", Project: "atlas", Level: entities.LevelMaster, Path: "m1", Status: entities.StatusTodo},
		{ID: "e1", Title: "Auth", Project: "atlas", Level: entities.LevelEpic, ParentID: "m1", Path: "m1.e1", Status: entities.StatusInProgress},
	}

	require.NoError(t, store.WriteAll(ctx, nodes))

	loaded, err := store.ReadAll(ctx)
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Equal(t, entities.LevelEpic, loaded[1].Level)
	assert.Equal(t, "m1.e1", loaded[1].Path)
}

func TestWriteAll_NilBecomesEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relationships.json")
	store := NewRelationshipStore(path)
	ctx := context.Background()

	require.NoError(t, store.WriteAll(ctx, nil))

	loaded, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// The file exists and is well-formed, not absent
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestCorpusReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	items := `[
		{"id":"m1","kind":"memory","title":"Auth notes","project":"atlas","category":"auth"},
		{"id":"m2","kind":"memory","title":"Billing notes","project":"ledger","category":"billing"},
		{"id":"t1","kind":"task","title":"Fix login","project":"atlas","category":"auth"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(items), 0o644))

	corpus := NewCorpusReader(path)
	ctx := context.Background()

	t.Run("list all", func(t *testing.T) {
		all, err := corpus.ListItems(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("filter by project", func(t *testing.T) {
		atlas, err := corpus.ListItems(ctx, &ports.ItemFilter{Project: "atlas"})
		require.NoError(t, err)
		assert.Len(t, atlas, 2)
	})

	t.Run("filter by kind", func(t *testing.T) {
		tasks, err := corpus.ListItems(ctx, &ports.ItemFilter{Kind: entities.KindTask})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "t1", tasks[0].ID)
	})

	t.Run("get by id", func(t *testing.T) {
		item, err := corpus.GetItem(ctx, "m2")
		require.NoError(t, err)
		assert.Equal(t, "Billing notes", item.Title)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := corpus.GetItem(ctx, "nope")
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}
