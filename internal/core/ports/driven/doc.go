// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns one file into a kind-specific metadata fragment
//   - ExtractorRegistry: Dispatches a kind to its extractor
//   - TextSourceReader: Locates and decodes sidecar text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorStore: Document store with nearest-neighbour query. Without it,
//     search returns nothing and queries report "index not found".
//   - EmbeddingService: Generates vector embeddings for the SQLite and memory stores.
//   - LLMService: Explanation service. Without it, queries run read-only.
//   - ToolRunner: External probing binaries. Without them, extractors fall back.
//   - NormaliserRegistry: Sidecar text cleanup. Without it, sidecar text is
//     indexed as decoded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
