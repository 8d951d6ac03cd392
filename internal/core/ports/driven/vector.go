package driven

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// VectorIndex stores L2-normalized embedding vectors mapped 1:1 by
// ordinal position to chunk identities, with on-disk snapshot
// persistence and duplicate suppression.
//
// All operations on one instance serialize behind a single lock; the
// text and image instances are independent and may run fully in
// parallel. Embedding computation must happen outside any call into the
// index so the lock is held only for index work.
type VectorIndex interface {
	// Add appends the non-duplicate subset of the given pairs,
	// normalizing each accepted embedding, and returns how many
	// vectors were actually inserted. A chunk id already present is
	// skipped, not an error. Either all accepted vectors become
	// visible or, on failure, none do.
	Add(ctx context.Context, embeddings [][]float32, chunks []domain.Chunk) (int, error)

	// Search returns up to topK nearest chunk ids with L2 distances in
	// ascending distance order. The query is normalized with the same
	// normalization applied at insert time. A query of the wrong
	// dimension fails with domain.ErrDimensionMismatch.
	Search(ctx context.Context, query []float32, topK int) ([]domain.RetrievedChunk, error)

	// Save atomically persists the vectors and the id list as one
	// logical unit of two companion files. A failed save leaves the
	// previous snapshot intact.
	Save() error

	// Reset clears in-memory state and removes the on-disk files.
	Reset() error

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the configured vector dimension.
	Dimension() int

	// Close releases resources without saving.
	Close() error
}
