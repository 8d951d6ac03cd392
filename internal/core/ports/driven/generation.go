package driven

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// GenerationContext is one retrieved chunk formatted for the generator.
type GenerationContext struct {
	Text       string
	SourceFile string
	PageNumber *int
	Timestamp  *float64
}

// Generator turns a question plus retrieved contexts into a grounded
// answer. The not-found decision is made at this boundary: adapters map
// backend output that declines to answer onto Answer{Found: false} with
// the canonical domain.NotFoundAnswer text, so no caller ever pattern
// matches free-form model output.
type Generator interface {
	// GenerateAnswer produces the full answer synchronously. With an
	// empty context list it returns domain.NotFound() without invoking
	// the model.
	GenerateAnswer(ctx context.Context, question string, contexts []GenerationContext, history []domain.ChatMessage) (domain.Answer, error)

	// GenerateStream produces the answer as a forward-only,
	// single-consumption sequence of fragments. The channel is closed
	// on completion; a mid-stream backend failure is surfaced as a
	// terminal event with Err set. Cancelling ctx abandons the stream
	// without leaking the backend request.
	GenerateStream(ctx context.Context, question string, contexts []GenerationContext, history []domain.ChatMessage) (<-chan domain.StreamEvent, error)

	// ModelName returns the generation model name.
	ModelName() string

	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
