package normalisers

import (
	"github.com/custodia-labs/mediascope/internal/normalisers/html"
	"github.com/custodia-labs/mediascope/internal/normalisers/markdown"
	"github.com/custodia-labs/mediascope/internal/normalisers/plaintext"
)

// RegisterDefaults registers the markdown, markup and plain-text normalisers.
func RegisterDefaults(r *Registry) {
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(plaintext.New())
}

// Default returns a registry with the default normalisers.
func Default() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
