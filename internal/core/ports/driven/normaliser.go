package driven

// Normaliser turns decoded sidecar text into plain text for indexing.
// Each normaliser handles specific sidecar extensions (e.g. .md, .nfo).
type Normaliser interface {
	// SupportedExtensions returns the lower-case extensions handled, with dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise returns the plain-text form of text.
	Normalise(text string) string
}
