package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func answeredResult() *domain.QueryResult {
	return &domain.QueryResult{
		Question: "beach trip",
		Answer:   "holiday/beach.mp4 matches the file name",
		Candidates: []domain.Candidate{
			{
				ID:         "id-1",
				Path:       "/media/holiday/beach.mp4",
				Kind:       "video",
				Similarity: 0.812,
				Reasons:    []string{"file_name=beach.mp4"},
				SourceType: domain.SourceTypeMetadata,
			},
			{
				ID:         "id-2",
				Path:       "/media/misc/clip.mkv",
				Kind:       "video",
				Similarity: 0.2,
				SourceType: domain.SourceTypeMetadata,
			},
		},
		Count:  2,
		Status: domain.QueryAnswered,
		Mode:   domain.QueryModeExplain,
	}
}

func TestQueryCmd(t *testing.T) {
	t.Run("requires a question", func(t *testing.T) {
		_, err := runCLI(newMockApp(), "query")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
	})

	t.Run("prints answer and candidates", func(t *testing.T) {
		m := newMockApp()
		m.query.result = answeredResult()

		out, err := runCLI(m, "query", "beach", "trip")

		require.NoError(t, err)
		assert.Equal(t, "beach trip", m.query.lastQuestion)
		assert.Equal(t, 5, m.query.lastTopK)
		assert.False(t, m.lastReadOnly)
		assert.Contains(t, out, "holiday/beach.mp4 matches the file name")
		assert.Contains(t, out, "Candidates (2)")
		assert.Contains(t, out, "[1] /media/holiday/beach.mp4 (video, 0.812)")
		assert.Contains(t, out, "file_name=beach.mp4")
		assert.Contains(t, out, "matched on generic fields only")
	})

	t.Run("read-only and top flags", func(t *testing.T) {
		m := newMockApp()
		m.query.result = answeredResult()

		_, err := runCLI(m, "query", "beach", "--read-only", "-n", "2")

		require.NoError(t, err)
		assert.True(t, m.lastReadOnly)
		assert.Equal(t, 2, m.query.lastTopK)
	})

	t.Run("json output", func(t *testing.T) {
		m := newMockApp()
		m.query.result = answeredResult()

		out, err := runCLI(m, "query", "beach", "--json")

		require.NoError(t, err)
		var got domain.QueryResult
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, domain.QueryAnswered, got.Status)
		assert.Equal(t, 2, got.Count)
		assert.Equal(t, "/media/holiday/beach.mp4", got.Candidates[0].Path)
	})

	t.Run("not found", func(t *testing.T) {
		m := newMockApp()
		m.query.result = &domain.QueryResult{Answer: domain.AnswerNotFound, Status: domain.QueryNotFound}

		out, err := runCLI(m, "query", "nothing")

		require.NoError(t, err)
		assert.Contains(t, out, domain.AnswerNotFound)
		assert.NotContains(t, out, "Candidates")
	})

	t.Run("index unavailable", func(t *testing.T) {
		m := newMockApp()
		m.query.result = &domain.QueryResult{Answer: domain.AnswerIndexUnavailable, Status: domain.QueryIndexUnavailable}

		out, err := runCLI(m, "query", "beach")

		require.NoError(t, err)
		assert.Contains(t, out, domain.AnswerIndexUnavailable)
	})

	t.Run("propagates failure", func(t *testing.T) {
		m := newMockApp()
		m.query.err = errors.New("boom")

		_, err := runCLI(m, "query", "beach")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "query failed")
	})
}
