package extractors

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps each media kind to exactly one extractor.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.Kind]driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[domain.Kind]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the extractor for its kind.
func (r *Registry) Register(e driven.Extractor) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.Kind()] = e
}

// For returns the extractor for a kind.
func (r *Registry) For(kind domain.Kind) (driven.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[kind]
	return e, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []domain.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.Kind, 0, len(r.extractors))
	for k := range r.extractors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Extract dispatches on kind. Kinds without an extractor yield nil.
func (r *Registry) Extract(ctx context.Context, kind domain.Kind, path string) domain.KindMeta {
	e, ok := r.For(kind)
	if !ok {
		return nil
	}
	return e.Extract(ctx, path)
}
