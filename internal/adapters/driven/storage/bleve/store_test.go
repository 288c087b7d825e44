package bleve

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	err := store.Add(context.Background(),
		[]string{
			"type: video | name: holiday.mp4 | title: Summer Holiday",
			"type: video | name: 旅行の動画.mp4",
			"type: archive | name: invoices.zip",
		},
		[]map[string]string{
			{domain.MetaKeyPath: "/m/holiday.mp4", domain.MetaKeyTitle: "Summer Holiday"},
			{domain.MetaKeyPath: "/m/旅行の動画.mp4"},
			nil,
		},
		[]string{"media_1", "media_2", "media_3"},
	)
	require.NoError(t, err)
}

func TestStore_Query(t *testing.T) {
	store := setupStore(t)
	seed(t, store)

	res, err := store.Query(context.Background(), "holiday", 5)

	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "media_1", res.IDs[0])
	assert.Equal(t, "Summer Holiday", res.Metadatas[0][domain.MetaKeyTitle])
	assert.Contains(t, res.Documents[0], "holiday.mp4")
	assert.Greater(t, res.Distances[0], 0.0)
	assert.Less(t, res.Distances[0], 1.0)
}

func TestStore_QueryJapanese(t *testing.T) {
	store := setupStore(t)
	seed(t, store)

	res, err := store.Query(context.Background(), "旅行", 5)

	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Len(), 1)
	assert.Equal(t, "media_2", res.IDs[0])
}

func TestStore_CountResetUpsert(t *testing.T) {
	store := setupStore(t)
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []string{"type: archive | name: receipts.zip"},
		[]map[string]string{{}}, []string{"media_3"}))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, store.Persist(ctx))
	require.NoError(t, store.Reset(ctx))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_DeleteByPath(t *testing.T) {
	store := setupStore(t)
	seed(t, store)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, []string{"holiday subtitles"},
		[]map[string]string{{domain.MetaKeyPath: "/m/holiday.mp4"}}, []string{"chunk_1"}))

	removed, err := store.DeleteByPath(ctx, []string{"/m/holiday.mp4", "/m/旅行の動画.mp4"})

	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := store.Query(ctx, "holiday", 5)
	require.NoError(t, err)
	assert.Zero(t, res.Len())
}

func TestStore_Add_LengthMismatch(t *testing.T) {
	store := setupStore(t)

	err := store.Add(context.Background(), []string{"a", "b"}, []map[string]string{{}}, []string{"1", "2"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bleve")
	assert.False(t, Exists(path))

	store, err := NewStore(path)
	require.NoError(t, err)
	seed(t, store)
	require.NoError(t, store.Close())
	assert.True(t, Exists(path))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestScoreDistance(t *testing.T) {
	assert.Equal(t, 1.0, ScoreDistance(0))
	assert.Equal(t, 0.5, ScoreDistance(1))
	assert.Equal(t, 1.0, ScoreDistance(-2))
}
