package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates a query or insert vector does not
	// match the index's configured dimension. This is a configuration
	// error, never retried and never silently truncated or padded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptIndex indicates the on-disk index state is unusable,
	// e.g. exactly one of the two companion snapshot files exists.
	// Starting empty here would silently mask data loss.
	ErrCorruptIndex = errors.New("corrupt vector index state")

	// ErrIndexClosed indicates the vector index has been closed.
	ErrIndexClosed = errors.New("vector index closed")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the generation backend failed.
	// Callers map this to 500-class handling, distinct from validation.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrUnsupportedType indicates an unknown file type for extraction.
	ErrUnsupportedType = errors.New("unsupported type")
)
