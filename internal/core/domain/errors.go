package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file format no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrToolUnavailable indicates an external probing binary is missing.
	// Extractors degrade to the next strategy or mark fields absent.
	ErrToolUnavailable = errors.New("tool unavailable")

	// ErrToolTimeout indicates an external probing binary exceeded its deadline.
	ErrToolTimeout = errors.New("tool timeout")

	// ErrFileTooLarge indicates a sidecar exceeded the configured text ceiling.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUndecodable indicates no configured text encoding could decode a file.
	ErrUndecodable = errors.New("unable to decode")

	// ErrIndexUnavailable indicates the vector store is absent or uninitialised.
	// Queries return a structured "index not found" result instead.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not reachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrExplainerUnavailable indicates the explanation service is not configured
	// or not reachable. Queries still return candidates.
	ErrExplainerUnavailable = errors.New("explainer unavailable")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config not found")

	// ErrInvalidConfig indicates a required setting is missing or malformed.
	// This is the only failure class that is fatal at startup.
	ErrInvalidConfig = errors.New("invalid config")
)
