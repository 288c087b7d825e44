package domain

import (
	"fmt"
	"time"
)

// StoreBackend selects the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreSQLite persists embeddings in a local SQLite database.
	StoreSQLite StoreBackend = "sqlite"

	// StoreBleve keeps a BM25 keyword index on disk.
	StoreBleve StoreBackend = "bleve"

	// StoreMemory keeps everything in process memory.
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreSQLite, StoreBleve, StoreMemory:
		return true
	default:
		return false
	}
}

// EmbeddingProvider selects how documents are embedded.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingHash is the local feature-hashing embedder. No service needed.
	EmbeddingHash EmbeddingProvider = "hash"

	// EmbeddingOllama uses a local Ollama instance.
	EmbeddingOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	return p == EmbeddingHash || p == EmbeddingOllama
}

// EncodingErrorPolicy decides what happens when no encoding decodes a file.
type EncodingErrorPolicy string

// Encoding error policies.
const (
	// EncodingSkip records an error and skips the sidecar.
	EncodingSkip EncodingErrorPolicy = "skip"

	// EncodingReplace decodes as UTF-8 with replacement characters.
	EncodingReplace EncodingErrorPolicy = "replace"
)

// IsValid returns true if the policy is recognised.
func (p EncodingErrorPolicy) IsValid() bool {
	return p == EncodingSkip || p == EncodingReplace
}

// ScanSettings configures the filesystem walk.
type ScanSettings struct {
	// Root is the directory to scan.
	Root string

	// Workers bounds parallel extraction.
	Workers int

	// Extensions maps extensions to kinds.
	Extensions ExtensionMap
}

// ArchiveSettings configures archive listing limits.
type ArchiveSettings struct {
	// MaxEntries caps listed entries.
	MaxEntries int

	// MaxSizeGB triggers a size warning above this uncompressed total.
	MaxSizeGB float64
}

// TextSettings configures sidecar text reading.
type TextSettings struct {
	// MaxSizeBytes skips sidecars larger than this.
	MaxSizeBytes int64

	// EncodingErrors is the fallback policy when decoding fails.
	EncodingErrors EncodingErrorPolicy
}

// ChunkSettings configures the chunker.
type ChunkSettings struct {
	// Strategy selects fixed windows or sentence packing.
	Strategy ChunkStrategy

	Size     int
	Overlap  int
	MaxChars int
}

// IndexSettings configures the indexer.
type IndexSettings struct {
	// SidecarChunks also indexes sidecar text chunks as separate documents.
	SidecarChunks bool
}

// StoreSettings configures the vector store.
type StoreSettings struct {
	Backend StoreBackend
	Path    string
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider   EmbeddingProvider
	Model      string
	BaseURL    string
	Dimensions int
}

// ExplainerSettings configures the text-generation service.
type ExplainerSettings struct {
	Enabled     bool
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// ToolSettings configures external binary invocation.
type ToolSettings struct {
	// RatePerSecond throttles probe invocations. Zero disables throttling.
	RatePerSecond float64
}

// Settings is the complete runtime configuration.
type Settings struct {
	Scan      ScanSettings
	Archive   ArchiveSettings
	Text      TextSettings
	Chunk     ChunkSettings
	Index     IndexSettings
	Store     StoreSettings
	Embedding EmbeddingSettings
	Explainer ExplainerSettings
	Tools     ToolSettings
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Scan: ScanSettings{
			Root:       ".",
			Workers:    4,
			Extensions: DefaultExtensionMap(),
		},
		Archive: ArchiveSettings{
			MaxEntries: 50000,
			MaxSizeGB:  50,
		},
		Text: TextSettings{
			MaxSizeBytes:   1 << 20,
			EncodingErrors: EncodingSkip,
		},
		Chunk: ChunkSettings{
			Strategy: ChunkSentence,
			Size:     512,
			Overlap:  50,
			MaxChars: 512,
		},
		Store: StoreSettings{
			Backend: StoreSQLite,
		},
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingHash,
			Model:      "nomic-embed-text",
			BaseURL:    "http://localhost:11434",
			Dimensions: 256,
		},
		Explainer: ExplainerSettings{
			Enabled:     true,
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0.1,
			Timeout:     30 * time.Second,
		},
		Tools: ToolSettings{
			RatePerSecond: 0,
		},
	}
}

// Validate checks that required settings are present and well-formed.
func (s *Settings) Validate() error {
	switch {
	case s.Scan.Workers < 1:
		return fmt.Errorf("%w: scan.workers must be >= 1", ErrInvalidConfig)
	case s.Archive.MaxEntries < 1:
		return fmt.Errorf("%w: archive.max_entries must be >= 1", ErrInvalidConfig)
	case s.Archive.MaxSizeGB <= 0:
		return fmt.Errorf("%w: archive.max_size_gb must be > 0", ErrInvalidConfig)
	case s.Text.MaxSizeBytes < 1:
		return fmt.Errorf("%w: text.max_size_bytes must be >= 1", ErrInvalidConfig)
	case !s.Text.EncodingErrors.IsValid():
		return fmt.Errorf("%w: text.encoding_errors %q", ErrInvalidConfig, s.Text.EncodingErrors)
	case !s.Chunk.Strategy.IsValid():
		return fmt.Errorf("%w: chunk.strategy %q", ErrInvalidConfig, s.Chunk.Strategy)
	case s.Chunk.Size < 1 || s.Chunk.Overlap < 0 || s.Chunk.Overlap >= s.Chunk.Size:
		return fmt.Errorf("%w: chunk.overlap must be in [0, chunk.size)", ErrInvalidConfig)
	case s.Chunk.MaxChars < 1:
		return fmt.Errorf("%w: chunk.max_chars must be >= 1", ErrInvalidConfig)
	case !s.Store.Backend.IsValid():
		return fmt.Errorf("%w: store.backend %q", ErrInvalidConfig, s.Store.Backend)
	case s.Store.Backend != StoreMemory && s.Store.Path == "":
		return fmt.Errorf("%w: store.path is required for %s", ErrInvalidConfig, s.Store.Backend)
	case !s.Embedding.Provider.IsValid():
		return fmt.Errorf("%w: embedding.provider %q", ErrInvalidConfig, s.Embedding.Provider)
	case s.Embedding.Dimensions < 1:
		return fmt.Errorf("%w: embedding.dimensions must be >= 1", ErrInvalidConfig)
	case s.Explainer.Enabled && (s.Explainer.BaseURL == "" || s.Explainer.Model == ""):
		return fmt.Errorf("%w: explainer.base_url and explainer.model are required", ErrInvalidConfig)
	case s.Explainer.Timeout <= 0:
		return fmt.Errorf("%w: explainer.timeout must be > 0", ErrInvalidConfig)
	}
	return nil
}
