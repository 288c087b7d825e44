package driven

import (
	"context"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// Extractor turns one file path into a kind-specific metadata fragment.
// Extract never fails past this boundary: problems are reported through
// the fragment's ProbeStatus.
type Extractor interface {
	// Kind returns the media kind this extractor handles.
	Kind() domain.Kind

	// Extract reads metadata for path.
	Extract(ctx context.Context, path string) domain.KindMeta
}

// ExtractorRegistry dispatches a media kind to its extractor.
type ExtractorRegistry interface {
	// Register adds or replaces the extractor for its kind.
	Register(e Extractor)

	// For returns the extractor for a kind.
	For(kind domain.Kind) (Extractor, bool)

	// Kinds returns the registered kinds.
	Kinds() []domain.Kind

	// Extract dispatches path to the extractor for kind.
	// Kinds without an extractor yield nil.
	Extract(ctx context.Context, kind domain.Kind, path string) domain.KindMeta
}

// TextSourceReader locates and decodes sidecar text files.
type TextSourceReader interface {
	// Discover finds same-stem sidecars next to a media file.
	Discover(mediaPath string) map[string]domain.SidecarRef

	// FromSidecars reads the given sidecars and attaches bounded previews.
	FromSidecars(refs map[string]domain.SidecarRef) domain.TextExtraction

	// FromPath discovers and reads sidecars, attaching lengths only.
	FromPath(mediaPath string) domain.TextExtraction

	// ReadFull decodes a whole sidecar file.
	ReadFull(path string) (string, error)
}
