package driving

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// QueryService answers natural-language questions over the indexed
// corpus.
type QueryService interface {
	// Query runs the full pipeline and returns the assembled answer,
	// confidence and citations.
	Query(ctx context.Context, question string, topK int, history []domain.ChatMessage) (*domain.QueryResult, error)

	// StreamQuery runs retrieval synchronously and streams the answer.
	// The metadata (sources, confidence) is complete before the first
	// token so callers can render citations immediately. The event
	// channel is single-consumption; abandoning it via ctx cancels
	// generation.
	StreamQuery(ctx context.Context, question string, topK int, history []domain.ChatMessage) (*QueryMetadata, <-chan domain.StreamEvent, error)

	// Status reports index sizes and model identities.
	Status(ctx context.Context) (*SystemStatus, error)
}

// QueryMetadata is the retrieval outcome emitted before streaming tokens.
type QueryMetadata struct {
	Confidence float64
	Sources    []domain.Source
}

// SystemStatus describes the running system.
type SystemStatus struct {
	TextVectors     int
	ImageVectors    int
	TextDimension   int
	ImageDimension  int
	EmbeddingModel  string
	ImageModel      string
	GenerationModel string
	DatabasePath    string
}
