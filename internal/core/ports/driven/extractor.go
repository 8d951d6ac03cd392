package driven

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// Extractor turns a file into already-chunked content. This is the
// core's only input channel for new material; how text is pulled out of
// a format is the extractor's business. Chunk ids must be deterministic
// for file-based sources so re-ingestion is idempotent.
type Extractor interface {
	// Extract produces the chunks for a file. fileType selects the
	// extraction strategy; sourceID becomes the chunks' SourceFile.
	// Unknown file types fail with domain.ErrUnsupportedType.
	Extract(ctx context.Context, filePath, fileType, sourceID string) ([]domain.Chunk, error)

	// SupportedTypes lists the file types this extractor handles.
	SupportedTypes() []string
}
