// Package normalisers provides Normaliser implementations for sidecar
// text. Each normaliser knows how to turn one family of companion files
// (notes, markup metadata, plain text) into clean searchable text.
//
// Normalisers are registered with the Registry at startup.
package normalisers
