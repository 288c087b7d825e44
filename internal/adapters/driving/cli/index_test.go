package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/core/services"
)

func TestIndexCmd(t *testing.T) {
	t.Run("scans and indexes", func(t *testing.T) {
		m := newMockApp()
		m.scanner.records = testRecords()

		out, err := runCLI(m, "index", "/media")

		require.NoError(t, err)
		assert.True(t, m.lastCreate)
		assert.Len(t, m.indexer.indexed, 2)
		assert.Equal(t, 0, m.indexer.resets)
		assert.Contains(t, out, "Indexed 2 documents")
	})

	t.Run("rebuild resets first", func(t *testing.T) {
		m := newMockApp()
		m.scanner.records = testRecords()

		_, err := runCLI(m, "index", "--rebuild")

		require.NoError(t, err)
		assert.Equal(t, 1, m.indexer.resets)
		assert.Equal(t, "/media", m.scanner.lastRoot)
	})

	t.Run("indexes from export", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.json")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, services.NewExporter().Export(f, "/media", testRecords(), driving.ExportJSON))
		require.NoError(t, f.Close())

		m := newMockApp()
		out, err := runCLI(m, "index", "--from", path)

		require.NoError(t, err)
		assert.Empty(t, m.scanner.lastRoot)
		require.Len(t, m.indexer.indexed, 2)
		assert.Equal(t, "/media/holiday/beach.mp4", m.indexer.indexed[0].Path)
		assert.Contains(t, out, "Indexed 2 documents")
	})

	t.Run("from and root are exclusive", func(t *testing.T) {
		m := newMockApp()

		_, err := runCLI(m, "index", "/media", "--from", "scan.json")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing export file", func(t *testing.T) {
		m := newMockApp()

		_, err := runCLI(m, "index", "--from", filepath.Join(t.TempDir(), "nope.json"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "open export")
	})

	t.Run("reports sidecar chunks and failures", func(t *testing.T) {
		m := newMockApp()
		m.scanner.records = testRecords()
		m.indexer.report = &domain.IndexReport{
			Indexed: 1,
			Chunks:  3,
			Skipped: 1,
			Failures: []domain.IndexFailure{
				{Path: "/media/music/song.flac", Err: "empty document"},
			},
		}

		out, err := runCLI(m, "index")

		require.NoError(t, err)
		assert.Contains(t, out, "Indexed 1 documents (3 sidecar chunks)")
		assert.Contains(t, out, "Skipped 1 records:")
		assert.Contains(t, out, "/media/music/song.flac: empty document")
	})

	t.Run("nothing to index", func(t *testing.T) {
		m := newMockApp()

		out, err := runCLI(m, "index")

		require.NoError(t, err)
		assert.Contains(t, out, "Nothing to index.")
	})

	t.Run("propagates index failure", func(t *testing.T) {
		m := newMockApp()
		m.scanner.records = testRecords()
		m.indexer.err = errors.New("disk full")

		_, err := runCLI(m, "index")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}
