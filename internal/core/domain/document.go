package domain

import "time"

// Metadata keys written by the document builder. Every value is a string.
const (
	MetaKeyKind       = "kind"
	MetaKeyPath       = "path"
	MetaKeySize       = "size"
	MetaKeyMTime      = "mtime"
	MetaKeySourceType = "source_type"
	MetaKeyResolution = "resolution"
	MetaKeyDuration   = "duration"
	MetaKeyTitle      = "title"
	MetaKeyArtist     = "artist"
	MetaKeyAlbum      = "album"
	MetaKeyFormat     = "format"
	MetaKeyEntries    = "entries"
	MetaKeyHasText    = "has_text"
	MetaKeyChunkID    = "chunk_id"
	MetaKeyStart      = "start_char"
	MetaKeyEnd        = "end_char"
)

// Source types mark the provenance of an indexed document.
const (
	// SourceTypeMetadata marks documents built from structural metadata.
	SourceTypeMetadata = "metadata"

	// SourceTypeSidecar marks documents built from sidecar text chunks.
	SourceTypeSidecar = "sidecar"
)

// EvidenceFields is the whitelist of metadata keys a query may cite.
var EvidenceFields = []string{
	MetaKeyTitle, MetaKeyArtist, MetaKeyAlbum, MetaKeyResolution,
	MetaKeyDuration, MetaKeyFormat, MetaKeyEntries, MetaKeyHasText,
}

// IndexDocument is the unit committed to a vector store.
type IndexDocument struct {
	// ID is the synthetic store identifier.
	ID string

	// Document is the human-readable search text.
	Document string

	// Metadata is the flat string-typed metadata map.
	Metadata map[string]string
}

// VectorQueryResult is the nearest-neighbour answer of a vector store,
// ordered by ascending distance.
type VectorQueryResult struct {
	IDs       []string
	Distances []float64
	Documents []string
	Metadatas []map[string]string
}

// Len returns the number of hits.
func (r *VectorQueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.IDs)
}

// IndexFailure records one record skipped during indexing.
type IndexFailure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// IndexReport summarises an indexing batch.
type IndexReport struct {
	// Indexed is the number of documents committed.
	Indexed int `json:"indexed"`

	// Chunks is the number of sidecar chunk documents committed.
	Chunks int `json:"chunks"`

	// Skipped is the number of records that failed construction.
	Skipped int `json:"skipped"`

	// Failures lists the skipped records.
	Failures []IndexFailure `json:"failures,omitempty"`
}

// IndexRun is one committed index batch.
type IndexRun struct {
	ID        string    `json:"id"`
	Documents int       `json:"documents"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexStatus describes the current state of the index.
type IndexStatus struct {
	// Available is false when no index exists.
	Available bool `json:"available"`

	// Documents is the number of stored documents.
	Documents int `json:"documents"`

	// LastRun is the most recent committed batch, when the store keeps a
	// history.
	LastRun *IndexRun `json:"last_run,omitempty"`
}
