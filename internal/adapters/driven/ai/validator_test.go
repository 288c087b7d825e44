package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func TestCheckServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	t.Run("hash embedder and reachable explainer", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Explainer.BaseURL = srv.URL

		statuses := CheckServices(context.Background(), &settings)

		require.Len(t, statuses, 2)
		assert.Equal(t, "embedding", statuses[0].Name)
		assert.Equal(t, "hash-256", statuses[0].Target)
		assert.NoError(t, statuses[0].Err)
		assert.Equal(t, "explainer", statuses[1].Name)
		assert.True(t, statuses[1].Enabled)
		assert.NoError(t, statuses[1].Err)
	})

	t.Run("unreachable explainer", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Explainer.BaseURL = "http://127.0.0.1:1"

		statuses := CheckServices(context.Background(), &settings)

		require.Len(t, statuses, 2)
		assert.Error(t, statuses[1].Err)
	})

	t.Run("disabled explainer and bleve", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Explainer.Enabled = false
		settings.Store.Backend = domain.StoreBleve

		statuses := CheckServices(context.Background(), &settings)

		require.Len(t, statuses, 2)
		assert.False(t, statuses[0].Enabled)
		assert.False(t, statuses[1].Enabled)
		assert.NoError(t, statuses[1].Err)
	})

	t.Run("ollama embedder", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Embedding.Provider = domain.EmbeddingOllama
		settings.Embedding.BaseURL = srv.URL
		settings.Explainer.Enabled = false

		statuses := CheckServices(context.Background(), &settings)

		assert.Equal(t, "nomic-embed-text", statuses[0].Target)
		assert.NoError(t, statuses[0].Err)
	})
}
