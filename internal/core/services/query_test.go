package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func holidayHits() *domain.VectorQueryResult {
	return &domain.VectorQueryResult{
		IDs:       []string{"media_1", "media_2"},
		Distances: []float64{0.25, 1.4},
		Documents: []string{"type: video | name: holiday.mp4", "type: image | name: cat.jpg"},
		Metadatas: []map[string]string{
			{
				domain.MetaKeyKind:       "video",
				domain.MetaKeyPath:       "/media/holiday.mp4",
				domain.MetaKeySize:       "1048576",
				domain.MetaKeyMTime:      "2024-03-01T12:00:00Z",
				domain.MetaKeySourceType: "metadata",
				domain.MetaKeyResolution: "1920x1080",
				domain.MetaKeyTitle:      "Holiday",
			},
			{
				domain.MetaKeyKind: "image",
				domain.MetaKeyPath: "/media/cat.jpg",
			},
		},
	}
}

func TestQueryEngine_EmptyQuestion(t *testing.T) {
	q := NewQueryEngine(NewStoreGuard(&mockVectorStore{}))

	_, err := q.Query(context.Background(), "   ", 5)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQueryEngine_IndexUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		store *mockVectorStore
	}{
		{"no store", nil},
		{"count error", &mockVectorStore{countErr: errors.New("no such table")}},
		{"query error", &mockVectorStore{count: 3, queryErr: errors.New("corrupt")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := NewStoreGuard(nil)
			if tt.store != nil {
				guard = NewStoreGuard(tt.store)
			}
			llm := &mockLLM{answer: "should not be called"}
			q := NewQueryEngine(guard, WithExplainer(llm))

			res, err := q.Query(context.Background(), "holiday video", 5)

			require.NoError(t, err)
			assert.Equal(t, domain.QueryIndexUnavailable, res.Status)
			assert.Equal(t, domain.AnswerIndexUnavailable, res.Answer)
			assert.Contains(t, res.Answer, "not found")
			assert.Empty(t, res.Candidates)
			assert.Zero(t, res.Count)
			assert.Empty(t, llm.prompts)
		})
	}
}

func TestQueryEngine_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		store *mockVectorStore
	}{
		{"no hits", &mockVectorStore{count: 4, result: &domain.VectorQueryResult{}}},
		{"empty index", &mockVectorStore{count: 0, queryErr: errors.New("must not be queried")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{answer: "unused"}
			q := NewQueryEngine(NewStoreGuard(tt.store), WithExplainer(llm))

			res, err := q.Query(context.Background(), "holiday", 5)

			require.NoError(t, err)
			assert.Equal(t, domain.QueryNotFound, res.Status)
			assert.Equal(t, domain.AnswerNotFound, res.Answer)
			assert.NotNil(t, res.Candidates)
			assert.Empty(t, res.Candidates)
			assert.Zero(t, res.Count)
			assert.Empty(t, llm.prompts)
		})
	}
}

func TestQueryEngine_Explain(t *testing.T) {
	store := &mockVectorStore{count: 2, result: holidayHits()}
	llm := &mockLLM{answer: "  /media/holiday.mp4 matches title=Holiday  "}
	q := NewQueryEngine(NewStoreGuard(store), WithExplainer(llm), WithTemperature(0.2))

	res, err := q.Query(context.Background(), "holiday video", 0)

	require.NoError(t, err)
	assert.Equal(t, domain.QueryModeExplain, res.Mode)
	assert.Equal(t, domain.QueryAnswered, res.Status)
	assert.Equal(t, "/media/holiday.mp4 matches title=Holiday", res.Answer)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, DefaultTopK, store.lastTopK)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "holiday video")
	assert.Contains(t, prompt, "[candidate 1] (kind: video)")
	assert.Contains(t, prompt, "path: /media/holiday.mp4")
	assert.Contains(t, prompt, "matched: title=Holiday | resolution=1920x1080")
	assert.Contains(t, prompt, "matched: (generic fields only)")
	assert.Contains(t, prompt, "Never infer")
	assert.Equal(t, 0.2, llm.opts[0].Temperature)
}

func TestQueryEngine_CandidatesCarryOnlyStoredEvidence(t *testing.T) {
	store := &mockVectorStore{count: 2, result: holidayHits()}
	q := NewQueryEngine(NewStoreGuard(store))

	res, err := q.Query(context.Background(), "anything", 5)

	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	for i, c := range res.Candidates {
		md := store.result.Metadatas[i]
		for _, reason := range c.Reasons {
			key, value, ok := strings.Cut(reason, "=")
			require.True(t, ok)
			assert.Equal(t, md[key], value)
		}
		assert.GreaterOrEqual(t, c.Similarity, 0.0)
		assert.LessOrEqual(t, c.Similarity, 1.0)
	}
	first := res.Candidates[0]
	assert.Equal(t, "media_1", first.ID)
	assert.Equal(t, "1048576", first.Size)
	assert.Equal(t, "2024-03-01T12:00:00Z", first.MTime)
	assert.InDelta(t, 0.75, first.Similarity, 1e-9)
	assert.Equal(t, 0.0, res.Candidates[1].Similarity)
	assert.Equal(t, domain.SourceTypeMetadata, res.Candidates[1].SourceType)
	assert.Empty(t, res.Candidates[1].Reasons)
}

func TestQueryEngine_ReadOnly(t *testing.T) {
	store := &mockVectorStore{count: 2, result: holidayHits()}

	t.Run("no explainer", func(t *testing.T) {
		q := NewQueryEngine(NewStoreGuard(store))
		res, err := q.Query(context.Background(), "holiday", 5)
		require.NoError(t, err)
		assert.Equal(t, domain.QueryModeReadOnly, res.Mode)
		assert.Equal(t, "2 candidate(s) found", res.Answer)
	})

	t.Run("forced", func(t *testing.T) {
		llm := &mockLLM{answer: "x"}
		q := NewQueryEngine(NewStoreGuard(store), WithExplainer(llm), WithReadOnly(true))
		res, err := q.Query(context.Background(), "holiday", 5)
		require.NoError(t, err)
		assert.Equal(t, domain.QueryModeReadOnly, q.Mode())
		assert.Equal(t, domain.QueryAnswered, res.Status)
		assert.Empty(t, llm.prompts)
	})
}

func TestQueryEngine_ExplainerFailures(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLM
		want string
	}{
		{"error", &mockLLM{err: errors.New("connection refused")}, "explainer unavailable: connection refused"},
		{"empty", &mockLLM{answer: "  \n"}, "explainer unavailable: empty response"},
		{"timeout", &mockLLM{answer: "late", delay: time.Second}, "explainer unavailable: timed out after 20ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockVectorStore{count: 2, result: holidayHits()}
			q := NewQueryEngine(NewStoreGuard(store),
				WithExplainer(tt.llm), WithExplainerTimeout(20*time.Millisecond))

			res, err := q.Query(context.Background(), "holiday", 5)

			require.NoError(t, err)
			assert.Equal(t, domain.QueryAnswered, res.Status)
			assert.Equal(t, tt.want, res.Answer)
			assert.Len(t, res.Candidates, 2)
		})
	}
}

func TestQueryEngine_PromptStore(t *testing.T) {
	store := &mockVectorStore{count: 2, result: holidayHits()}

	t.Run("custom template", func(t *testing.T) {
		llm := &mockLLM{answer: "ok"}
		q := NewQueryEngine(NewStoreGuard(store), WithExplainer(llm))
		q.SetPromptStore(&mockPromptStore{template: "Q<%s> E<%s>"})
		_, err := q.Query(context.Background(), "holiday", 5)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(llm.prompts[0], "Q<holiday> E<[candidate 1]"))
	})

	t.Run("bad placeholders fall back", func(t *testing.T) {
		llm := &mockLLM{answer: "ok"}
		q := NewQueryEngine(NewStoreGuard(store), WithExplainer(llm))
		q.SetPromptStore(&mockPromptStore{template: "only %s"})
		_, err := q.Query(context.Background(), "holiday", 5)
		require.NoError(t, err)
		assert.Contains(t, llm.prompts[0], "Never infer")
	})

	t.Run("load error falls back", func(t *testing.T) {
		llm := &mockLLM{answer: "ok"}
		q := NewQueryEngine(NewStoreGuard(store), WithExplainer(llm))
		q.SetPromptStore(&mockPromptStore{err: errors.New("denied")})
		_, err := q.Query(context.Background(), "holiday", 5)
		require.NoError(t, err)
		assert.Contains(t, llm.prompts[0], "Never infer")
	})
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.4, 0.6},
		{1, 0},
		{2, 0},
		{-0.5, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Similarity(tt.distance), 1e-9)
	}
}

func TestEvidence_WhitelistOrder(t *testing.T) {
	md := map[string]string{
		domain.MetaKeyHasText:    "subtitle",
		domain.MetaKeyPath:       "/x",
		domain.MetaKeyArtist:     "Band",
		domain.MetaKeyTitle:      "Song",
		domain.MetaKeyResolution: "",
	}

	assert.Equal(t, []string{"title=Song", "artist=Band", "has_text=subtitle"}, Evidence(md))
	assert.Equal(t, []string{}, Evidence(nil))
}

func TestCanTransition_QueryPaths(t *testing.T) {
	paths := [][]domain.QueryState{
		{domain.StateIdle, domain.StateSearching, domain.StateNoResults, domain.StateAnswered},
		{domain.StateIdle, domain.StateSearching, domain.StateHasResults, domain.StateExplaining, domain.StateAnswered},
		{domain.StateIdle, domain.StateSearching, domain.StateHasResults, domain.StateAnswered},
		{domain.StateIdle, domain.StateIndexUnavailable},
	}
	for _, p := range paths {
		for i := 1; i < len(p); i++ {
			assert.True(t, domain.CanTransition(p[i-1], p[i]), "%s -> %s", p[i-1], p[i])
		}
		assert.True(t, p[len(p)-1].IsTerminal())
	}
	assert.False(t, domain.CanTransition(domain.StateAnswered, domain.StateSearching))
}
