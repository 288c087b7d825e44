package driven

// NormaliserRegistry selects the appropriate normaliser for a sidecar.
// It keeps a priority-ordered list of normalisers per extension.
type NormaliserRegistry interface {
	// Normalise cleans text with the best normaliser for ext.
	// Text for an unhandled extension is returned unchanged.
	Normalise(ext, text string) string

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedExtensions returns all extensions that can be normalised, sorted.
	SupportedExtensions() []string
}
