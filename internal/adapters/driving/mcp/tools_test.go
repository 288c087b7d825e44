package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and candidates", func(t *testing.T) {
		mockQuery := &mockQueryService{
			result: &domain.QueryResult{
				Question: "beach trip",
				Answer:   "holiday/beach.mp4 matched file_name",
				Candidates: []domain.Candidate{
					{ID: "a", Path: "/m/holiday/beach.mp4", Kind: "video", Similarity: 0.8, SourceType: "metadata"},
				},
				Count:  1,
				Status: domain.QueryAnswered,
				Mode:   domain.QueryModeExplain,
			},
		}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Question: "  beach trip ", TopK: 3})

		require.NoError(t, err)
		assert.Equal(t, "beach trip", mockQuery.lastQuestion)
		assert.Equal(t, 3, mockQuery.lastTopK)
		assert.Equal(t, domain.QueryAnswered, output.Status)
		assert.Equal(t, domain.QueryModeExplain, output.Mode)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Candidates, 1)
		assert.Equal(t, "/m/holiday/beach.mp4", output.Candidates[0].Path)
	})

	t.Run("default top k is 5", func(t *testing.T) {
		mockQuery := &mockQueryService{
			result: &domain.QueryResult{Answer: domain.AnswerNotFound, Status: domain.QueryNotFound},
		}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Question: "x"})

		require.NoError(t, err)
		assert.Equal(t, 5, mockQuery.lastTopK)
		assert.Equal(t, domain.AnswerNotFound, output.Answer)
		assert.NotNil(t, output.Candidates)
		assert.Empty(t, output.Candidates)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		mockQuery := &mockQueryService{err: errors.New("query failed")}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Question: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "query failed")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search hits", func(t *testing.T) {
		mockIndex := &mockIndexService{
			result: &domain.VectorQueryResult{
				IDs:       []string{"a"},
				Distances: []float64{0.25},
				Documents: []string{"beach.mp4 video"},
				Metadatas: []map[string]string{{domain.MetaKeyPath: "/m/beach.mp4"}},
			},
		}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Index: mockIndex})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "beach", Limit: 4})

		require.NoError(t, err)
		assert.Equal(t, 4, mockIndex.lastLimit)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "a", output.Results[0].ID)
		assert.Equal(t, "/m/beach.mp4", output.Results[0].Path)
		assert.InDelta(t, 0.75, output.Results[0].Similarity, 1e-9)
		assert.Equal(t, "beach.mp4 video", output.Results[0].Document)
	})

	t.Run("default limit is 10", func(t *testing.T) {
		mockIndex := &mockIndexService{result: &domain.VectorQueryResult{}}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Index: mockIndex})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "beach"})

		require.NoError(t, err)
		assert.Equal(t, 10, mockIndex.lastLimit)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("nil result is empty", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Index: &mockIndexService{}})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "beach"})

		require.NoError(t, err)
		assert.Empty(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockIndex := &mockIndexService{err: errors.New("search failed")}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Index: mockIndex})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "beach"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}
