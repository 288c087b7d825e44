// Package domain defines the core business entities for mediascope.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - MediaRecord: One scanned file with its sidecars and kind metadata
//   - KindMeta: Closed set of per-kind metadata variants
//   - TextSource: Provenance-tagged sidecar text
//   - Chunk: A segment of a longer text body
//   - IndexDocument: The (document, metadata) pair committed to a vector store
//   - Candidate / QueryResult: Evidence-backed retrieval output
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
