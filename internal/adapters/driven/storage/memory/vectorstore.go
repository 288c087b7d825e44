package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type entry struct {
	document string
	metadata map[string]string
	vector   []float32
}

// VectorStore keeps embedded documents in memory and ranks them by
// brute-force cosine distance. Nothing survives Close.
type VectorStore struct {
	mu       sync.RWMutex
	embedder driven.EmbeddingService
	entries  map[string]entry
	order    []string
}

// NewVectorStore creates an empty store.
func NewVectorStore(embedder driven.EmbeddingService) (*VectorStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: memory store requires an embedder", domain.ErrInvalidConfig)
	}
	return &VectorStore{embedder: embedder, entries: make(map[string]entry)}, nil
}

// Add embeds and upserts documents.
func (s *VectorStore) Add(ctx context.Context, documents []string, metadatas []map[string]string, ids []string) error {
	if len(documents) != len(ids) || len(metadatas) != len(ids) {
		return fmt.Errorf("%w: %d documents, %d metadatas, %d ids",
			domain.ErrInvalidInput, len(documents), len(metadatas), len(ids))
	}
	if len(ids) == 0 {
		return nil
	}
	vectors, err := s.embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(ids) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(ids))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		if _, ok := s.entries[id]; !ok {
			s.order = append(s.order, id)
		}
		md := maps.Clone(metadatas[i])
		if md == nil {
			md = map[string]string{}
		}
		s.entries[id] = entry{document: documents[i], metadata: md, vector: vectors[i]}
	}
	return nil
}

// Query returns the topK nearest documents, nearest first. Ties keep
// insertion order.
func (s *VectorStore) Query(ctx context.Context, text string, topK int) (*domain.VectorQueryResult, error) {
	result := &domain.VectorQueryResult{}
	if topK <= 0 {
		return result, nil
	}
	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		id       string
		distance float64
	}
	hits := make([]hit, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		if len(e.vector) != len(query) {
			continue
		}
		hits = append(hits, hit{id: id, distance: cosineDistance(query, e.vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	for _, h := range hits {
		e := s.entries[h.id]
		result.IDs = append(result.IDs, h.id)
		result.Distances = append(result.Distances, h.distance)
		result.Documents = append(result.Documents, e.document)
		result.Metadatas = append(result.Metadatas, maps.Clone(e.metadata))
	}
	return result, nil
}

// DeleteByPath removes the documents of the given media paths.
func (s *VectorStore) DeleteByPath(_ context.Context, paths []string) (int, error) {
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if drop[s.entries[id].metadata[domain.MetaKeyPath]] {
			delete(s.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}

// Persist is a no-op.
func (s *VectorStore) Persist(_ context.Context) error {
	return nil
}

// Count returns the number of stored documents.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Reset removes every document.
func (s *VectorStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	s.order = nil
	return nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
