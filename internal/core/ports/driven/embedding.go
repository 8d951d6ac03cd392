package driven

import "context"

// TextEmbedder generates dense text embeddings.
// Deterministic for identical model weights and input; vectors are
// L2-normalizable and of a fixed dimension matching the text index.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local sentence-transformer inference servers
type TextEmbedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. Must match the
	// text VectorIndex configuration.
	Dimensions() int

	// ModelName returns the embedding model name.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ImageEmbedder generates cross-modal (CLIP-style) embeddings that place
// text and images in one vector space of the image index's dimension.
// Optional: when nil, image-index retrieval is disabled.
type ImageEmbedder interface {
	// EmbedText embeds texts into the cross-modal space, used for
	// querying the image index and for captions/OCR chunks.
	EmbedText(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedImages embeds image files referenced by path.
	EmbedImages(ctx context.Context, paths []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. Must match the
	// image VectorIndex configuration.
	Dimensions() int

	// ModelName returns the embedding model name.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
