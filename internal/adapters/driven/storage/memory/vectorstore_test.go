package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// --- Mock implementations ---

// wordEmbedder maps each known word to one axis.
type wordEmbedder struct {
	vocab []string
	err   error
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, len(e.vocab))
	for _, w := range strings.Fields(strings.ToLower(text)) {
		for i, v := range e.vocab {
			if v == w {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func (e *wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *wordEmbedder) Dimensions() int              { return len(e.vocab) }
func (e *wordEmbedder) ModelName() string            { return "words" }
func (e *wordEmbedder) Ping(_ context.Context) error { return nil }
func (e *wordEmbedder) Close() error                 { return nil }

func newTestVectorStore(t *testing.T) *VectorStore {
	t.Helper()
	store, err := NewVectorStore(&wordEmbedder{vocab: []string{"holiday", "beach", "invoice", "cat"}})
	require.NoError(t, err)
	return store
}

func TestVectorStore_AddQuery(t *testing.T) {
	store := newTestVectorStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx,
		[]string{"holiday beach", "invoice", "cat holiday"},
		[]map[string]string{{"path": "/a"}, {"path": "/b"}, nil},
		[]string{"a", "b", "c"}))

	res, err := store.Query(ctx, "beach holiday", 2)
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())
	assert.Equal(t, []string{"a", "c"}, res.IDs)
	assert.InDelta(t, 0.0, res.Distances[0], 1e-9)
	assert.Equal(t, "/a", res.Metadatas[0]["path"])
	assert.NotNil(t, res.Metadatas[1])
}

func TestVectorStore_Upsert(t *testing.T) {
	store := newTestVectorStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []string{"cat"}, []map[string]string{{}}, []string{"a"}))
	require.NoError(t, store.Add(ctx, []string{"invoice"}, []map[string]string{{}}, []string{"a"}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := store.Query(ctx, "invoice", 1)
	require.NoError(t, err)
	assert.Equal(t, "invoice", res.Documents[0])
}

func TestVectorStore_DeleteByPath(t *testing.T) {
	store := newTestVectorStore(t)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx,
		[]string{"holiday", "holiday beach", "invoice"},
		[]map[string]string{{"path": "/a"}, {"path": "/a"}, {"path": "/b"}},
		[]string{"a", "a_chunk", "b"}))

	removed, err := store.DeleteByPath(ctx, []string{"/a"})

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	res, err := store.Query(ctx, "holiday", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.IDs)
}

func TestVectorStore_MetadataIsCopied(t *testing.T) {
	store := newTestVectorStore(t)
	ctx := context.Background()
	md := map[string]string{"path": "/a"}

	require.NoError(t, store.Add(ctx, []string{"cat"}, []map[string]string{md}, []string{"a"}))
	md["path"] = "/changed"

	res, err := store.Query(ctx, "cat", 1)
	require.NoError(t, err)
	assert.Equal(t, "/a", res.Metadatas[0]["path"])
}

func TestVectorStore_Errors(t *testing.T) {
	t.Run("embedder required", func(t *testing.T) {
		_, err := NewVectorStore(nil)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("length mismatch", func(t *testing.T) {
		store := newTestVectorStore(t)
		err := store.Add(context.Background(), []string{"a"}, nil, []string{"1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("embedding failure", func(t *testing.T) {
		store, err := NewVectorStore(&wordEmbedder{err: errors.New("down")})
		require.NoError(t, err)
		err = store.Add(context.Background(), []string{"a"}, []map[string]string{{}}, []string{"1"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		_, err = store.Query(context.Background(), "a", 1)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestVectorStore_ResetAndTopKZero(t *testing.T) {
	store := newTestVectorStore(t)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, []string{"cat"}, []map[string]string{{}}, []string{"a"}))

	res, err := store.Query(ctx, "cat", 0)
	require.NoError(t, err)
	assert.Zero(t, res.Len())

	require.NoError(t, store.Persist(ctx))
	require.NoError(t, store.Reset(ctx))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, store.Close())
}
