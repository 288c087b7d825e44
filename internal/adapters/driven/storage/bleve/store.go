// Package bleve provides a keyword (BM25) implementation of driven.VectorStore
// backed by a bleve index. It needs no embedding service.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Indexed field names.
const (
	fieldDocument = "document"
	fieldMetadata = "metadata"
	fieldPath     = "path"
)

// resetBatchSize bounds the ids deleted per batch.
const resetBatchSize = 1000

// record is the indexed form of one document.
type record struct {
	Document string `json:"document"`
	Metadata string `json:"metadata"`
	Path     string `json:"path"`
}

// Store is a bleve-backed store. Distances are derived from BM25 scores
// as 1 / (1 + score).
type Store struct {
	index bleve.Index
	path  string
}

// NewStore opens the index at path, creating it when absent.
func NewStore(path string) (*Store, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
		idx, err = bleve.New(path, newMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening bleve index %s: %w", path, err)
	}
	return &Store{index: idx, path: path}, nil
}

// NewMemoryStore creates an index held in memory.
func NewMemoryStore() (*Store, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("creating in-memory bleve index: %w", err)
	}
	return &Store{index: idx}, nil
}

// Exists reports whether an index directory is present at path.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Join(path, "index_meta.json"))
	return err == nil
}

// newMapping indexes the document text with CJK bigrams, the media path as
// a single keyword, and stores the metadata JSON without indexing it.
func newMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = cjk.AnalyzerName
	text.Store = true

	meta := bleve.NewTextFieldMapping()
	meta.Index = false
	meta.Store = true
	meta.IncludeInAll = false

	path := bleve.NewKeywordFieldMapping()
	path.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldDocument, text)
	doc.AddFieldMappingsAt(fieldMetadata, meta)
	doc.AddFieldMappingsAt(fieldPath, path)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = cjk.AnalyzerName
	return m
}

// Add indexes documents in one batch. Existing ids are replaced.
func (s *Store) Add(ctx context.Context, documents []string, metadatas []map[string]string, ids []string) error {
	if len(documents) != len(ids) || len(metadatas) != len(ids) {
		return fmt.Errorf("%w: %d documents, %d metadatas, %d ids",
			domain.ErrInvalidInput, len(documents), len(metadatas), len(ids))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := s.index.NewBatch()
	for i, id := range ids {
		md := metadatas[i]
		if md == nil {
			md = map[string]string{}
		}
		mdJSON, err := json.Marshal(md)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", id, err)
		}
		if err := batch.Index(id, record{Document: documents[i], Metadata: string(mdJSON), Path: md[domain.MetaKeyPath]}); err != nil {
			return fmt.Errorf("indexing %s: %w", id, err)
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("writing batch: %w", err)
	}
	return nil
}

// Query runs a match query over the document text.
func (s *Store) Query(ctx context.Context, text string, topK int) (*domain.VectorQueryResult, error) {
	result := &domain.VectorQueryResult{}
	if topK <= 0 {
		return result, nil
	}

	q := bleve.NewMatchQuery(text)
	q.SetField(fieldDocument)
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)
	req.Fields = []string{fieldDocument, fieldMetadata}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	for _, hit := range res.Hits {
		doc, _ := hit.Fields[fieldDocument].(string)
		mdJSON, _ := hit.Fields[fieldMetadata].(string)
		md := map[string]string{}
		if mdJSON != "" {
			if err := json.Unmarshal([]byte(mdJSON), &md); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata for %s: %w", hit.ID, err)
			}
		}
		result.IDs = append(result.IDs, hit.ID)
		result.Distances = append(result.Distances, ScoreDistance(hit.Score))
		result.Documents = append(result.Documents, doc)
		result.Metadatas = append(result.Metadatas, md)
	}
	return result, nil
}

// Persist is a no-op; batches are durable once applied.
func (s *Store) Persist(_ context.Context) error {
	return nil
}

// Count returns the number of indexed documents.
func (s *Store) Count(_ context.Context) (int, error) {
	n, err := s.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return int(n), nil
}

// Reset deletes every document.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.deleteMatching(ctx, bleve.NewMatchAllQuery())
	return err
}

// DeleteByPath removes the documents of the given media paths.
func (s *Store) DeleteByPath(ctx context.Context, paths []string) (int, error) {
	removed := 0
	for _, p := range paths {
		q := bleve.NewTermQuery(p)
		q.SetField(fieldPath)
		n, err := s.deleteMatching(ctx, q)
		removed += n
		if err != nil {
			return removed, fmt.Errorf("deleting %s: %w", p, err)
		}
	}
	return removed, nil
}

// deleteMatching deletes the hits of q in pages until none remain.
func (s *Store) deleteMatching(ctx context.Context, q query.Query) (int, error) {
	removed := 0
	for {
		req := bleve.NewSearchRequestOptions(q, resetBatchSize, 0, false)
		res, err := s.index.SearchInContext(ctx, req)
		if err != nil {
			return removed, fmt.Errorf("listing documents: %w", err)
		}
		if len(res.Hits) == 0 {
			return removed, nil
		}
		batch := s.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := s.index.Batch(batch); err != nil {
			return removed, fmt.Errorf("deleting documents: %w", err)
		}
		removed += len(res.Hits)
	}
}

// Close closes the index.
func (s *Store) Close() error {
	return s.index.Close()
}

// ScoreDistance maps a non-negative relevance score to a distance in (0, 1].
func ScoreDistance(score float64) float64 {
	if score < 0 {
		score = 0
	}
	return 1 / (1 + score)
}
