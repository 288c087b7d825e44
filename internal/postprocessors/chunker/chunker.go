// Package chunker splits text bodies into fixed-window or sentence-bounded
// segments for indexing.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Defaults for the chunker.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50
	DefaultMaxChars     = 512
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker applies one strategy with fixed parameters.
type Chunker struct {
	strategy  domain.ChunkStrategy
	chunkSize int
	overlap   int
	maxChars  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the fixed-window size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between fixed windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMaxChars sets the soft cap for sentence-bounded chunks.
func WithMaxChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

// WithStrategy selects the segmentation strategy.
func WithStrategy(s domain.ChunkStrategy) Option {
	return func(c *Chunker) {
		if s.IsValid() {
			c.strategy = s
		}
	}
}

// New creates a chunker. An overlap that is not smaller than the chunk
// size is kept as configured and rejected by Chunk.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		strategy:  domain.ChunkFixed,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChars:  DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return string(c.strategy)
}

// Chunk segments text with the configured strategy.
func (c *Chunker) Chunk(text string, metadata map[string]string) ([]domain.Chunk, error) {
	if c.strategy == domain.ChunkSentence {
		return Sentences(text, c.maxChars, metadata)
	}
	return Fixed(text, c.chunkSize, c.overlap, metadata)
}

// Fixed splits text into windows of size characters advancing by
// size-overlap. Every window ends at min(start+size, len(text)).
func Fixed(text string, size, overlap int, metadata map[string]string) ([]domain.Chunk, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk size %d, overlap %d", domain.ErrInvalidInput, size, overlap)
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return []domain.Chunk{}, nil
	}

	step := size - overlap
	chunks := make([]domain.Chunk, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+size, n)
		chunks = append(chunks, newChunk(len(chunks), runes, start, end, metadata))
	}
	return chunks, nil
}

// Sentences packs whole sentences into chunks of at most maxChars
// characters. A sentence longer than maxChars becomes its own chunk.
func Sentences(text string, maxChars int, metadata map[string]string) ([]domain.Chunk, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars %d", domain.ErrInvalidInput, maxChars)
	}

	runes := []rune(text)
	chunks := []domain.Chunk{}
	var (
		start, end int
		count      int
	)
	flush := func() {
		c := newChunk(len(chunks), runes, start, end, metadata)
		c.SentenceCount = count
		chunks = append(chunks, c)
		count = 0
	}

	for _, s := range splitSentences(runes) {
		if count > 0 && s.end-start > maxChars {
			flush()
		}
		if count == 0 {
			start = s.start
		}
		end = s.end
		count++
	}
	if count > 0 {
		flush()
	}
	return chunks, nil
}

func newChunk(id int, runes []rune, start, end int, metadata map[string]string) domain.Chunk {
	c := domain.Chunk{
		ID:          id,
		Text:        string(runes[start:end]),
		StartOffset: start,
		EndOffset:   end,
		Length:      end - start,
	}
	if len(metadata) > 0 {
		c.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
