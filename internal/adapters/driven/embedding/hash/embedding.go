// Package hash provides a local embedding service based on feature hashing.
// It needs no model download or running service, so indexing works offline.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size when none is configured.
const DefaultDimensions = 256

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// EmbeddingService hashes tokens into a fixed-size, L2-normalised vector.
// Texts sharing tokens have a positive cosine similarity.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder with the given dimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the hashed vector of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	for _, tok := range Tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(s.dimensions))
		// The top bit picks the sign so collisions tend to cancel.
		if sum>>63 == 1 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm2 float64
	for _, v := range vec {
		norm2 += v * v
	}
	out := make([]float32, s.dimensions)
	if norm2 == 0 {
		return out, nil
	}
	inv := 1 / math.Sqrt(norm2)
	for i, v := range vec {
		out[i] = float32(v * inv)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName identifies the embedder and its size.
func (s *EmbeddingService) ModelName() string {
	return "hash-" + strconv.Itoa(s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokenize lower-cases NFKC-normalised text into word tokens. Runs of
// Han, Hiragana or Katakana characters, which carry no spaces, become
// overlapping character bigrams.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	var out []string
	for _, word := range tokenPattern.FindAllString(text, -1) {
		out = append(out, splitCJK(word)...)
	}
	return out
}

func splitCJK(word string) []string {
	var (
		out  []string
		run  []rune
		rest []rune
	)
	flushRun := func() {
		switch {
		case len(run) == 1:
			out = append(out, string(run))
		case len(run) > 1:
			for i := 0; i+1 < len(run); i++ {
				out = append(out, string(run[i:i+2]))
			}
		}
		run = run[:0]
	}
	flushRest := func() {
		if len(rest) > 0 {
			out = append(out, string(rest))
			rest = rest[:0]
		}
	}
	for _, r := range word {
		if isCJK(r) {
			flushRest()
			run = append(run, r)
		} else {
			flushRun()
			rest = append(rest, r)
		}
	}
	flushRun()
	flushRest()
	return out
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}
