package domain

// ChunkStrategy selects how text is segmented.
type ChunkStrategy string

// Chunk strategies.
const (
	ChunkFixed    ChunkStrategy = "fixed"
	ChunkSentence ChunkStrategy = "sentence"
)

// IsValid returns true if the strategy is recognised.
func (s ChunkStrategy) IsValid() bool {
	return s == ChunkFixed || s == ChunkSentence
}

// Chunk is a transient segment of a text body. Offsets are character
// (rune) positions relative to the input string.
type Chunk struct {
	// ID is the zero-based position within one chunking call.
	ID int `json:"chunk_id"`

	// Text is the segment content.
	Text string `json:"text"`

	// StartOffset is the inclusive start position.
	StartOffset int `json:"start_char"`

	// EndOffset is the exclusive end position.
	EndOffset int `json:"end_char"`

	// Length is the segment length in characters.
	Length int `json:"length"`

	// SentenceCount is set by the sentence strategy.
	SentenceCount int `json:"sentence_count,omitempty"`

	// Metadata is caller-supplied metadata, merged verbatim.
	Metadata map[string]string `json:"metadata,omitempty"`
}
