package driving

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// IngestReport summarises one ingestion run.
type IngestReport struct {
	SourceFile string
	FileType   string

	// Extracted is the number of chunks the extractor produced.
	Extracted int

	// Added is the number of new chunks actually indexed; the
	// difference from Extracted is duplicates skipped.
	Added int
}

// IngestService feeds new content into the metadata store and the
// vector indices.
type IngestService interface {
	// IngestFile extracts, persists, embeds and indexes one file.
	// Re-ingesting an unchanged file is an idempotent no-op with
	// Added == 0.
	IngestFile(ctx context.Context, filePath, fileType string) (*IngestReport, error)

	// IngestChunks persists and indexes pre-extracted chunks. This is
	// the entry point for external extraction pipelines.
	IngestChunks(ctx context.Context, chunks []domain.Chunk) (*IngestReport, error)

	// RemoveSource deletes all chunks for a source file from the
	// metadata store. Vector entries are dropped on the next rebuild.
	RemoveSource(ctx context.Context, sourceFile string) (int, error)

	// RebuildIndexes wipes both vector indices and re-embeds every
	// stored chunk from the metadata store.
	RebuildIndexes(ctx context.Context) error
}
