package domain

// PreviewChars caps the text attached to a MediaRecord.
const PreviewChars = 1000

// TextSource is sidecar text owned by exactly one MediaRecord.
type TextSource struct {
	// SourceType is the sidecar kind.
	SourceType SidecarType `json:"source_type"`

	// Filename is the sidecar base name.
	Filename string `json:"filename"`

	// Path is the absolute sidecar path.
	Path string `json:"path,omitempty"`

	// Extension is the lower-case sidecar extension.
	Extension string `json:"extension"`

	// SizeBytes is the sidecar file size.
	SizeBytes int64 `json:"size_bytes"`

	// Encoding is the encoding that decoded the file.
	Encoding string `json:"encoding,omitempty"`

	// Text is a bounded preview; empty when only the length is attached.
	Text string `json:"text,omitempty"`

	// TextLength is the full decoded length in characters.
	TextLength int `json:"text_length"`

	// Lines is the line count for subtitle sources.
	Lines int `json:"lines,omitempty"`
}

// TextExtraction is the result of reading all sidecars of one media file.
type TextExtraction struct {
	// Sources are the readable sidecars.
	Sources []TextSource `json:"text_sources"`

	// TotalTextSize sums full decoded lengths, not preview lengths.
	TotalTextSize int `json:"total_text_size"`

	// Errors are per-sidecar failures.
	Errors []string `json:"extraction_errors"`
}
