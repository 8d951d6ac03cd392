package driven

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// ChunkStore persists chunk records keyed by identity.
// Backed by SQLite; the store is the sole source of truth for chunk
// content. Vector indices hold identity and vector only.
type ChunkStore interface {
	// SaveChunks inserts chunks in a single transaction with
	// insert-or-ignore semantics per id and returns the number of rows
	// actually inserted. Duplicate ids are skipped, not errors; the
	// return value backs "X added, Y duplicates skipped" reporting.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) (int, error)

	// GetChunk retrieves a chunk by id. Returns domain.ErrNotFound
	// when absent.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// GetChunksBySource returns all chunks for a source file.
	GetChunksBySource(ctx context.Context, sourceFile string) ([]domain.Chunk, error)

	// GetAllChunks returns every stored chunk. Used by index-rebuild
	// tooling.
	GetAllChunks(ctx context.Context) ([]domain.Chunk, error)

	// DeleteChunksBySource transactionally deletes all chunks for a
	// source file and returns the deleted count.
	DeleteChunksBySource(ctx context.Context, sourceFile string) (int, error)
}
