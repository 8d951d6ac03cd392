package services

import (
	"context"
	"fmt"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driving"
	"github.com/SubikshaRamesh/AegisRAG/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller passes
// a non-positive value.
const DefaultTopK = 5

// QueryService runs the retrieval and generation pipeline. Embedders,
// indices and the generator are injected once and reused across all
// queries.
type QueryService struct {
	textEmbedder  driven.TextEmbedder
	imageEmbedder driven.ImageEmbedder
	textIndex     driven.VectorIndex
	imageIndex    driven.VectorIndex
	chunkStore    driven.ChunkStore
	generator     driven.Generator
	ranker        ranker

	dbPath string
}

// QueryOption configures the query service.
type QueryOption func(*QueryService)

// WithDiversityCap bounds how many chunks of one source type the
// selection may contain, so one modality cannot crowd out the others.
// Zero (the default) disables the cap.
func WithDiversityCap(limit int) QueryOption {
	return func(s *QueryService) {
		if limit >= 0 {
			s.ranker.perTypeCap = limit
		}
	}
}

// WithDatabasePath records the metadata store location for status
// reporting.
func WithDatabasePath(path string) QueryOption {
	return func(s *QueryService) {
		s.dbPath = path
	}
}

// NewQueryService creates a new query service. imageEmbedder and
// imageIndex are optional (can be nil); without them retrieval is
// text-only.
func NewQueryService(
	textEmbedder driven.TextEmbedder,
	imageEmbedder driven.ImageEmbedder,
	textIndex driven.VectorIndex,
	imageIndex driven.VectorIndex,
	chunkStore driven.ChunkStore,
	generator driven.Generator,
	opts ...QueryOption,
) *QueryService {
	s := &QueryService{
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		textIndex:     textIndex,
		imageIndex:    imageIndex,
		chunkStore:    chunkStore,
		generator:     generator,
		ranker:        ranker{chunkStore: chunkStore},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query runs the full pipeline and returns the assembled answer,
// confidence and citations.
func (s *QueryService) Query(ctx context.Context, question string, topK int, history []domain.ChatMessage) (*domain.QueryResult, error) {
	result, err := s.retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}
	if result.empty() {
		return notFoundResult(), nil
	}

	answer, err := s.generator.GenerateAnswer(ctx, question, contextsFor(result.chunks), history)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	// Citations alongside "I don't know" mislead the caller.
	if !answer.Found {
		return notFoundResult(), nil
	}

	return &domain.QueryResult{
		Answer:     answer.Text,
		Confidence: result.confidence,
		Sources:    result.sources(),
	}, nil
}

// StreamQuery runs retrieval synchronously and streams the answer. The
// metadata is complete before the first token. Because tokens arrive
// after the metadata is out, a generation that ends in the not-found
// answer cannot retro-zero the already-emitted metadata; callers
// needing that guarantee use Query.
func (s *QueryService) StreamQuery(ctx context.Context, question string, topK int, history []domain.ChatMessage) (*driving.QueryMetadata, <-chan domain.StreamEvent, error) {
	result, err := s.retrieve(ctx, question, topK)
	if err != nil {
		return nil, nil, err
	}

	meta := &driving.QueryMetadata{
		Confidence: result.confidence,
		Sources:    result.sources(),
	}

	events, err := s.generator.GenerateStream(ctx, question, contextsFor(result.chunks), history)
	if err != nil {
		return nil, nil, fmt.Errorf("generate stream: %w", err)
	}
	return meta, events, nil
}

// retrieve embeds the question, searches both indices and ranks the
// combined hits.
func (s *QueryService) retrieve(ctx context.Context, question string, topK int) (retrievalResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	logger.Section("retrieval")

	queryVec, err := s.textEmbedder.Embed(ctx, question)
	if err != nil {
		return retrievalResult{}, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.textIndex.Search(ctx, queryVec, topK)
	if err != nil {
		return retrievalResult{}, fmt.Errorf("text search: %w", err)
	}
	logger.Debug("text index: %d hits", len(hits))

	// Image search is gated on the image index being non-empty: the
	// cross-modal embedding call is not worth paying against an empty
	// index. The gate is a latency trade-off, applied identically on
	// every query.
	if s.imageSearchEnabled() {
		imageHits, err := s.searchImageIndex(ctx, question, topK)
		if err != nil {
			return retrievalResult{}, err
		}
		logger.Debug("image index: %d hits", len(imageHits))
		hits = append(hits, imageHits...)
	}

	return s.ranker.rank(ctx, question, hits, topK)
}

// searchImageIndex embeds the question into the cross-modal space and
// searches the image index.
func (s *QueryService) searchImageIndex(ctx context.Context, question string, topK int) ([]domain.RetrievedChunk, error) {
	vecs, err := s.imageEmbedder.EmbedText(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question (cross-modal): %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: cross-modal embedder returned %d vectors for one text", domain.ErrEmbeddingUnavailable, len(vecs))
	}

	hits, err := s.imageIndex.Search(ctx, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	return hits, nil
}

// imageSearchEnabled reports whether the image side of retrieval is
// usable for this query.
func (s *QueryService) imageSearchEnabled() bool {
	return s.imageEmbedder != nil && s.imageIndex != nil && s.imageIndex.Len() > 0
}

// Status reports index sizes and model identities.
func (s *QueryService) Status(ctx context.Context) (*driving.SystemStatus, error) {
	status := &driving.SystemStatus{
		TextVectors:     s.textIndex.Len(),
		TextDimension:   s.textIndex.Dimension(),
		EmbeddingModel:  s.textEmbedder.ModelName(),
		GenerationModel: s.generator.ModelName(),
		DatabasePath:    s.dbPath,
	}
	if s.imageIndex != nil {
		status.ImageVectors = s.imageIndex.Len()
		status.ImageDimension = s.imageIndex.Dimension()
	}
	if s.imageEmbedder != nil {
		status.ImageModel = s.imageEmbedder.ModelName()
	}
	return status, nil
}

// contextsFor formats chunks for the generator.
func contextsFor(chunks []domain.Chunk) []driven.GenerationContext {
	out := make([]driven.GenerationContext, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, driven.GenerationContext{
			Text:       c.Payload.Value(),
			SourceFile: c.SourceFile,
			PageNumber: c.PageNumber,
			Timestamp:  c.Timestamp,
		})
	}
	return out
}

// notFoundResult is the zero-confidence fallback response.
func notFoundResult() *domain.QueryResult {
	return &domain.QueryResult{
		Answer:     domain.NotFoundAnswer,
		Confidence: 0,
		Sources:    []domain.Source{},
	}
}
