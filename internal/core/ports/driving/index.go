package driving

import (
	"context"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// IndexService commits media records to the vector store.
type IndexService interface {
	// Index commits one document per record and persists once.
	Index(ctx context.Context, records []domain.MediaRecord) (*domain.IndexReport, error)

	// Search runs a read-only nearest-neighbour query.
	// Returns an empty result when no store is available.
	Search(ctx context.Context, query string, topK int) (*domain.VectorQueryResult, error)

	// Reset clears the collection.
	Reset(ctx context.Context) error

	// Status reports the document count and the last committed run.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
