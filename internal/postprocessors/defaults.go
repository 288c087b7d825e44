package postprocessors

import (
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/postprocessors/chunker"
)

// RegisterDefaults registers the fixed and sentence strategies.
func RegisterDefaults(r *Registry) {
	r.Register(string(domain.ChunkFixed), buildFixed)
	r.Register(string(domain.ChunkSentence), buildSentence)
}

// ConfigFromSettings converts chunk settings to builder config.
func ConfigFromSettings(s domain.ChunkSettings) map[string]any {
	return map[string]any{
		"chunk_size": s.Size,
		"overlap":    s.Overlap,
		"max_chars":  s.MaxChars,
	}
}

// buildFixed creates a fixed-window chunker.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 512)
//   - overlap (int): Overlapping characters between chunks (default: 50)
func buildFixed(cfg map[string]any) (driven.Chunker, error) {
	opts := []chunker.Option{chunker.WithStrategy(domain.ChunkFixed)}
	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.New(opts...), nil
}

// buildSentence creates a sentence-bounded chunker.
// Supported config keys:
//   - max_chars (int): Soft cap per chunk (default: 512)
func buildSentence(cfg map[string]any) (driven.Chunker, error) {
	opts := []chunker.Option{chunker.WithStrategy(domain.ChunkSentence)}
	if n, ok := getIntFromConfig(cfg, "max_chars"); ok {
		opts = append(opts, chunker.WithMaxChars(n))
	}
	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
