package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func TestExtractFilePath(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "absolute path",
			uri:      "mediascope://files//media/holiday/beach.mp4",
			expected: "/media/holiday/beach.mp4",
		},
		{
			name:     "escaped path",
			uri:      "mediascope://files//media/my%20clip.mp4",
			expected: "/media/my clip.mp4",
		},
		{
			name:     "invalid prefix",
			uri:      "file:///media/beach.mp4",
			expected: "",
		},
		{
			name:     "bad escape",
			uri:      "mediascope://files/%zz",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractFilePath(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSettingsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns settings as json", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Store.Backend = domain.StoreBleve
		ports := &Ports{Query: &mockQueryService{}, Settings: &mockSettingsService{settings: &settings}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleSettingsResource(ctx, makeReadResourceRequest("mediascope://settings"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"bleve"`)
	})

	t.Run("returns error on load failure", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}, Settings: &mockSettingsService{err: errors.New("bad toml")}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleSettingsResource(ctx, makeReadResourceRequest("mediascope://settings"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading settings")
	})
}

func TestServer_handleFileResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns extracted record", func(t *testing.T) {
		rec := domain.NewMediaRecord("/media/beach.mp4", 2048, time.Unix(1700000000, 0), domain.KindVideo)
		scan := &mockScanService{record: &rec}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Scan: scan})
		require.NoError(t, err)

		uri := "mediascope://files//media/beach.mp4"
		result, err := server.handleFileResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		assert.Equal(t, "/media/beach.mp4", scan.lastPath)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, uri, result.Contents[0].URI)
		assert.Contains(t, result.Contents[0].Text, `"path": "/media/beach.mp4"`)
		assert.Contains(t, result.Contents[0].Text, `"kind": "video"`)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Scan: &mockScanService{}})
		require.NoError(t, err)

		_, err = server.handleFileResource(ctx, makeReadResourceRequest("mediascope://other"))

		require.Error(t, err)
	})

	t.Run("returns error on extraction failure", func(t *testing.T) {
		scan := &mockScanService{err: domain.ErrUnsupportedFormat}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Scan: scan})
		require.NoError(t, err)

		_, err = server.handleFileResource(ctx, makeReadResourceRequest("mediascope://files//media/a.txt"))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})
}
