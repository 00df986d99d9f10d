package types

import "errors"

// Error taxonomy for the retrieval service layer. Provider-specific
// failures are wrapped into these at the boundary and never leak into
// the fusion/dedup/pack logic.
var (
	// ErrProviderFailure wraps a full-text or vector backend failure.
	// Surfaced verbatim to the caller; the engine does not retry and
	// does not fall back to single-signal results.
	ErrProviderFailure = errors.New("search provider failure")

	// ErrEmbeddingFailure wraps a query-embedding failure. Fatal to
	// hybrid and vector-only search.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrInvalidIdentifier is returned for malformed memory or
	// chat-context identifiers in the service APIs.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// Hit validation errors
	ErrInvalidMemoryID   = errors.New("invalid memory ID")
	ErrInvalidRank       = errors.New("rank must be >= 0")
	ErrNegativeScore     = errors.New("score must be non-negative")
	ErrInvalidProvenance = errors.New("invalid provenance")
	ErrEmptyContent      = errors.New("content cannot be empty")
)
