package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrImmutable indicates an attempt to rewrite the text of a captured activity.
	ErrImmutable = errors.New("record is immutable")

	// Embedding Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or could not produce a vector. Retrieval proceeds ungrounded.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingTransient marks an embedding failure worth retrying:
	// network errors, timeouts, 5xx responses and rate limits.
	ErrEmbeddingTransient = errors.New("transient embedding failure")

	// ErrEmbeddingTerminal marks an embedding failure that repeats until
	// configuration changes: rejected credentials, exhausted quota, malformed responses.
	ErrEmbeddingTerminal = errors.New("terminal embedding failure")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the credentials are missing or were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// Index Errors.

	// ErrIndexUnavailable indicates the vector index was never initialised.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexCorrupt indicates the index rejected a vector (dimension mismatch)
	// or its on-disk state could not be read back.
	ErrIndexCorrupt = errors.New("vector index corrupt")
)
