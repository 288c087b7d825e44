package normalisers

import (
	"sort"
	"strings"

	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches sidecar text to the highest-priority normaliser
// registered for its extension.
type Registry struct {
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]driven.Normaliser)}
}

// Register adds a normaliser under each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.byExt[ext] = list
	}
}

// For returns the preferred normaliser for ext, or nil.
func (r *Registry) For(ext string) driven.Normaliser {
	list := r.byExt[strings.ToLower(ext)]
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// Normalise cleans text with the preferred normaliser for ext.
func (r *Registry) Normalise(ext, text string) string {
	n := r.For(ext)
	if n == nil {
		return text
	}
	return n.Normalise(text)
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
