package domain

// ToolStatus is the normalised availability of an external binary.
type ToolStatus struct {
	// Available is true when the binary was found and answered.
	Available bool `json:"available"`

	// Error describes why the tool is unavailable.
	Error string `json:"error,omitempty"`
}

// Capabilities is computed once at start-up and passed to extractors.
type Capabilities struct {
	FFprobe  ToolStatus `json:"ffprobe"`
	SevenZip ToolStatus `json:"7z"`
	Unrar    ToolStatus `json:"unrar"`
}
