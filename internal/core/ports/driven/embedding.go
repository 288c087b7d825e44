package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// Vector stores that rank by cosine distance depend on it.
//
// Implementations:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local feature hashing (no service required)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
