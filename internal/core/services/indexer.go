package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// Indexer commits media records to the vector store.
type Indexer struct {
	guard   *StoreGuard
	text    driven.TextSourceReader
	chunker driven.Chunker
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithSidecarChunks also indexes sidecar text as chunk documents with
// source_type "sidecar".
func WithSidecarChunks(text driven.TextSourceReader, chunker driven.Chunker) IndexerOption {
	return func(ix *Indexer) {
		ix.text = text
		ix.chunker = chunker
	}
}

// NewIndexer creates an indexer over a guarded store.
func NewIndexer(guard *StoreGuard, opts ...IndexerOption) *Indexer {
	ix := &Indexer{guard: guard}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index builds one document per record, replaces the stored documents of
// those files in one batch and persists once. Records that fail
// construction are logged and skipped.
func (ix *Indexer) Index(ctx context.Context, records []domain.MediaRecord) (*domain.IndexReport, error) {
	logger.Section("Indexing")
	report := &domain.IndexReport{Failures: []domain.IndexFailure{}}

	if !ix.guard.Available() {
		return report, domain.ErrIndexUnavailable
	}

	var (
		docs  []string
		metas []map[string]string
		ids   []string
		paths []string
	)
	for i := range records {
		r := &records[i]
		doc, err := BuildIndexDocument(r)
		if err != nil {
			logger.Warn("skip %s: %v", r.Path, err)
			report.Skipped++
			report.Failures = append(report.Failures, domain.IndexFailure{Path: r.Path, Err: err.Error()})
			continue
		}
		docs = append(docs, doc.Document)
		metas = append(metas, doc.Metadata)
		ids = append(ids, doc.ID)
		paths = append(paths, r.Path)
		report.Indexed++

		for _, c := range ix.sidecarChunks(r) {
			docs = append(docs, c.Document)
			metas = append(metas, c.Metadata)
			ids = append(ids, c.ID)
			report.Chunks++
		}
	}

	if len(ids) == 0 {
		logger.Info("nothing to index")
		return report, nil
	}

	err := ix.guard.Write(func(store driven.VectorStore) error {
		// A re-indexed file keeps none of its previous chunk documents.
		removed, err := store.DeleteByPath(ctx, paths)
		if err != nil {
			return fmt.Errorf("remove stale documents: %w", err)
		}
		logger.With("removed", removed, "files", len(paths)).Debug("previous documents removed")
		if err := store.Add(ctx, docs, metas, ids); err != nil {
			return fmt.Errorf("add documents: %w", err)
		}
		if err := store.Persist(ctx); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	logger.Info("indexed %d records, %d chunks, %d skipped", report.Indexed, report.Chunks, report.Skipped)
	return report, nil
}

// sidecarChunks builds chunk documents for a record's sidecar text.
// Read and chunk failures only drop the affected sidecar.
func (ix *Indexer) sidecarChunks(r *domain.MediaRecord) []domain.IndexDocument {
	if ix.text == nil || ix.chunker == nil {
		return nil
	}

	var out []domain.IndexDocument
	for _, src := range r.TextSources {
		if src.Path == "" {
			continue
		}
		text, err := ix.text.ReadFull(src.Path)
		if err != nil {
			logger.Debug("sidecar %s not chunked: %v", src.Path, err)
			continue
		}
		base := map[string]string{
			domain.MetaKeyKind:       r.Kind.String(),
			domain.MetaKeyPath:       r.Path,
			domain.MetaKeySize:       strconv.FormatInt(r.SizeBytes, 10),
			domain.MetaKeyMTime:      BuildMetadata(r)[domain.MetaKeyMTime],
			domain.MetaKeySourceType: domain.SourceTypeSidecar,
			domain.MetaKeyHasText:    string(src.SourceType),
		}
		chunks, err := ix.chunker.Chunk(text, base)
		if err != nil {
			logger.Warn("chunk %s: %v", src.Path, err)
			continue
		}
		for _, c := range chunks {
			md := c.Metadata
			md[domain.MetaKeyChunkID] = strconv.Itoa(c.ID)
			md[domain.MetaKeyStart] = strconv.Itoa(c.StartOffset)
			md[domain.MetaKeyEnd] = strconv.Itoa(c.EndOffset)
			out = append(out, domain.IndexDocument{
				ID:       ChunkDocumentID(src.Path, c.ID),
				Document: c.Text,
				Metadata: md,
			})
		}
	}
	return out
}

// Search runs a read-only nearest-neighbour query. An absent or
// uninitialised store yields an empty result.
func (ix *Indexer) Search(ctx context.Context, query string, topK int) (*domain.VectorQueryResult, error) {
	empty := &domain.VectorQueryResult{}
	if !ix.guard.Available() {
		return empty, nil
	}

	var result *domain.VectorQueryResult
	err := ix.guard.Read(func(store driven.VectorStore) error {
		var err error
		result, err = store.Query(ctx, query, topK)
		return err
	})
	if err != nil {
		logger.Warn("search failed: %v", err)
		return empty, nil
	}
	if result == nil {
		return empty, nil
	}
	return result, nil
}

// Reset clears the collection.
func (ix *Indexer) Reset(ctx context.Context) error {
	if !ix.guard.Available() {
		return domain.ErrIndexUnavailable
	}
	return ix.guard.Write(func(store driven.VectorStore) error {
		if err := store.Reset(ctx); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
		return nil
	})
}

// Status reports the document count and, when the store keeps a run
// history, the last committed run. A missing index is not an error.
func (ix *Indexer) Status(ctx context.Context) (*domain.IndexStatus, error) {
	status := &domain.IndexStatus{}
	if !ix.guard.Available() {
		return status, nil
	}
	err := ix.guard.Read(func(store driven.VectorStore) error {
		n, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		status.Available = true
		status.Documents = n
		if h, ok := store.(driven.RunHistory); ok {
			run, err := h.LastRun(ctx)
			if err != nil {
				return fmt.Errorf("last run: %w", err)
			}
			status.LastRun = run
		}
		return nil
	})
	if err != nil {
		return status, err
	}
	return status, nil
}
