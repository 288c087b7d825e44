package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
)

func exportRecords() []domain.MediaRecord {
	video := videoRecord()
	video.SizeBytes = 5_000_000_000
	video.Sidecars["subtitle.srt"] = domain.SidecarRef{Path: "/media/movies/holiday.srt", Size: 42, Type: domain.SidecarSubtitle}
	video.TextSources = []domain.TextSource{{
		SourceType: domain.SidecarSubtitle, Filename: "holiday.srt", Extension: ".srt",
		SizeBytes: 42, Encoding: "utf-8", Text: "Hello", TextLength: 5, Lines: 1,
	}}
	video.TotalTextSize = 5

	archive := domain.NewMediaRecord("/media/a.zip", 10, testMTime, domain.KindArchive)
	archive.Meta = &domain.ArchiveMeta{
		ProbeStatus: domain.ProbeStatus{Available: true},
		Format:      "zip",
		EntryCount:  1,
		Entries:     []domain.ArchiveEntry{{Name: "x.txt", Size: 3, CompressedSize: domain.Ptr(int64(2))}},
	}
	return []domain.MediaRecord{video, archive}
}

func fixedExporter() *Exporter {
	e := NewExporter()
	e.now = func() time.Time { return testMTime }
	return e
}

func TestExporter_RoundTrip(t *testing.T) {
	for _, format := range []driving.ExportFormat{driving.ExportJSON, driving.ExportYAML} {
		t.Run(string(format), func(t *testing.T) {
			e := fixedExporter()
			records := exportRecords()
			var buf bytes.Buffer

			require.NoError(t, e.Export(&buf, "/media", records, format))
			got, err := e.Import(&buf, format)

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, int64(5_000_000_000), got[0].SizeBytes)
			assert.True(t, got[0].ModifiedAt.Equal(testMTime))
			assert.Equal(t, records[0].Sidecars, got[0].Sidecars)
			assert.Equal(t, records[0].TextSources, got[0].TextSources)
			assert.Equal(t, BuildDocument(&records[0]), BuildDocument(&got[0]))
			assert.Equal(t, BuildMetadata(&records[1]), BuildMetadata(&got[1]))

			meta, ok := got[1].Meta.(*domain.ArchiveMeta)
			require.True(t, ok)
			require.NotNil(t, meta.Entries[0].CompressedSize)
			assert.Equal(t, int64(2), *meta.Entries[0].CompressedSize)
		})
	}
}

func TestExporter_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, fixedExporter().Export(&buf, "/media", nil, driving.ExportJSON))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.EqualValues(t, ExportVersion, env["version"])
	assert.Equal(t, "/media", env["root"])
	assert.Equal(t, "2024-03-01T12:00:00Z", env["generated_at"])
	assert.Equal(t, []any{}, env["records"])
}

func TestExporter_YAMLUsesIntegers(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, fixedExporter().Export(&buf, "/media", exportRecords(), driving.ExportYAML))

	assert.Contains(t, buf.String(), "5000000000")
	assert.NotContains(t, buf.String(), "e+09")
}

func TestExporter_ImportErrors(t *testing.T) {
	e := NewExporter()

	_, err := e.Import(strings.NewReader(`{"version": 9, "records": []}`), driving.ExportJSON)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.Import(strings.NewReader(`{"version": 1, "records": [{"path": ""}]}`), driving.ExportJSON)
	assert.Error(t, err)

	_, err = e.Import(strings.NewReader(`not json`), driving.ExportJSON)
	assert.Error(t, err)

	_, err = e.Import(strings.NewReader(`{}`), "xml")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, e.Export(&bytes.Buffer{}, "/", nil, "xml"), domain.ErrInvalidInput)
}
