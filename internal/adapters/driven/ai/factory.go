// Package ai builds the embedding, explainer and vector store adapters
// selected by the settings.
package ai

import (
	"fmt"
	"time"

	"github.com/custodia-labs/mediascope/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/mediascope/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/custodia-labs/mediascope/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/mediascope/internal/adapters/driven/storage/bleve"
	"github.com/custodia-labs/mediascope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediascope/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity checks.
const pingTimeout = 5 * time.Second

// Components holds the adapters built from settings. Any field may be nil.
type Components struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
}

// Close releases all resources held by the components.
func (c *Components) Close() {
	if c.VectorStore != nil {
		if err := c.VectorStore.Close(); err != nil {
			logger.Warn("closing vector store: %v", err)
		}
	}
	if c.EmbeddingService != nil {
		_ = c.EmbeddingService.Close()
	}
	if c.LLMService != nil {
		_ = c.LLMService.Close()
	}
}

// Build creates the components for settings. With create false, a missing
// on-disk index leaves VectorStore nil so readers report it unavailable.
func Build(settings *domain.Settings, create bool) (*Components, error) {
	c := &Components{LLMService: CreateLLMService(settings.Explainer)}

	if settings.Store.Backend != domain.StoreBleve {
		embedder, err := CreateEmbeddingService(settings.Embedding)
		if err != nil {
			return nil, err
		}
		c.EmbeddingService = embedder
	}

	store, err := OpenVectorStore(settings.Store, c.EmbeddingService, create)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.VectorStore = store
	return c, nil
}

// CreateEmbeddingService creates the embedding service for the configured provider.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.EmbeddingHash, "":
		return hash.NewEmbeddingService(settings.Dimensions), nil
	case domain.EmbeddingOllama:
		// Ollama models fix their own width; it is learned on first use.
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrInvalidConfig, settings.Provider)
	}
}

// CreateLLMService creates the explainer. Returns nil when it is disabled.
func CreateLLMService(settings domain.ExplainerSettings) driven.LLMService {
	if !settings.Enabled {
		return nil
	}
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// OpenVectorStore opens the configured store. When create is false and no
// index exists at the configured path, it returns nil and no error.
func OpenVectorStore(settings domain.StoreSettings, embedder driven.EmbeddingService, create bool) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.StoreSQLite, "":
		if !create && !sqlite.Exists(settings.Path) {
			logger.Debug("no index at %s", settings.Path)
			return nil, nil
		}
		return sqlite.NewStore(settings.Path, embedder)
	case domain.StoreBleve:
		if !create && !bleve.Exists(settings.Path) {
			logger.Debug("no index at %s", settings.Path)
			return nil, nil
		}
		return bleve.NewStore(settings.Path)
	case domain.StoreMemory:
		return memory.NewVectorStore(embedder)
	default:
		return nil, fmt.Errorf("%w: unsupported store backend %q", domain.ErrInvalidConfig, settings.Backend)
	}
}
