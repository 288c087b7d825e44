package driven

import (
	"context"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// VectorStore is the document store consumed by the indexer and the query
// engine. Only the add/query/persist shape is relied on by the core; the
// storage engine and its nearest-neighbour algorithm are opaque.
type VectorStore interface {
	// Add stores documents with their metadata under the given ids.
	// An existing id is replaced.
	Add(ctx context.Context, documents []string, metadatas []map[string]string, ids []string) error

	// Query returns up to topK nearest documents ordered by ascending distance.
	Query(ctx context.Context, text string, topK int) (*domain.VectorQueryResult, error)

	// DeleteByPath removes every document whose "path" metadata is one of
	// paths and returns how many were removed.
	DeleteByPath(ctx context.Context, paths []string) (int, error)

	// Persist flushes pending writes to durable storage.
	Persist(ctx context.Context) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Reset removes all documents.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// RunHistory is implemented by stores that record each persisted batch.
type RunHistory interface {
	// LastRun returns the most recent run, or nil when none was recorded.
	LastRun(ctx context.Context) (*domain.IndexRun, error)
}
