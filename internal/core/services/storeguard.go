package services

import (
	"sync"

	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// StoreGuard serialises access to a shared vector store: one writer role
// holding the write lock for a whole batch, many concurrent readers.
type StoreGuard struct {
	mu    sync.RWMutex
	store driven.VectorStore
}

// NewStoreGuard wraps a store. A nil store is allowed and reads as absent.
func NewStoreGuard(store driven.VectorStore) *StoreGuard {
	return &StoreGuard{store: store}
}

// Read runs fn under the read lock.
func (g *StoreGuard) Read(fn func(driven.VectorStore) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(g.store)
}

// Write runs fn under the write lock.
func (g *StoreGuard) Write(fn func(driven.VectorStore) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.store)
}

// Available reports whether a store is configured.
func (g *StoreGuard) Available() bool {
	return g != nil && g.store != nil
}
