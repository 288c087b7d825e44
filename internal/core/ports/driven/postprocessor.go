package driven

import "github.com/custodia-labs/mediascope/internal/core/domain"

// Chunker splits a text body into segments. Caller metadata is copied
// verbatim into every chunk.
type Chunker interface {
	// Name returns the strategy name for logging.
	Name() string

	// Chunk segments text.
	Chunk(text string, metadata map[string]string) ([]domain.Chunk, error)
}
