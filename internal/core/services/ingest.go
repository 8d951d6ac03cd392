package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driving"
	"github.com/SubikshaRamesh/AegisRAG/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService feeds content into the metadata store and the vector
// indices. Chunks are persisted before they are indexed: a crash
// between the two leaves orphaned metadata rows, which are harmless and mean
// re-ingestion completes the work, whereas the reverse order would leave
// vectors whose ids resolve to nothing.
type IngestService struct {
	extractors    map[string]driven.Extractor
	chunkStore    driven.ChunkStore
	textEmbedder  driven.TextEmbedder
	imageEmbedder driven.ImageEmbedder
	textIndex     driven.VectorIndex
	imageIndex    driven.VectorIndex
}

// NewIngestService creates a new ingest service. imageEmbedder and
// imageIndex are optional (can be nil); without them visual chunks are
// persisted but not indexed.
func NewIngestService(
	chunkStore driven.ChunkStore,
	textEmbedder driven.TextEmbedder,
	imageEmbedder driven.ImageEmbedder,
	textIndex driven.VectorIndex,
	imageIndex driven.VectorIndex,
) *IngestService {
	return &IngestService{
		extractors:    make(map[string]driven.Extractor),
		chunkStore:    chunkStore,
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		textIndex:     textIndex,
		imageIndex:    imageIndex,
	}
}

// RegisterExtractor makes an extractor available for the file types it
// supports.
func (s *IngestService) RegisterExtractor(e driven.Extractor) {
	for _, t := range e.SupportedTypes() {
		s.extractors[t] = e
	}
}

// IngestFile extracts, persists, embeds and indexes one file.
// Re-ingesting an unchanged file is an idempotent no-op with Added == 0.
func (s *IngestService) IngestFile(ctx context.Context, filePath, fileType string) (*driving.IngestReport, error) {
	extractor, ok := s.extractors[fileType]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, fileType)
	}

	sourceID := filepath.Base(filePath)
	chunks, err := extractor.Extract(ctx, filePath, fileType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", sourceID, err)
	}

	report, err := s.IngestChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	report.SourceFile = sourceID
	report.FileType = fileType
	return report, nil
}

// IngestChunks persists and indexes pre-extracted chunks.
func (s *IngestService) IngestChunks(ctx context.Context, chunks []domain.Chunk) (*driving.IngestReport, error) {
	report := &driving.IngestReport{Extracted: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}
	report.SourceFile = chunks[0].SourceFile
	report.FileType = chunks[0].SourceType

	logger.Section("ingestion")

	saved, err := s.chunkStore.SaveChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	logger.Info("persisted %d/%d chunks (%d duplicates skipped)", saved, len(chunks), len(chunks)-saved)

	added, err := s.index(ctx, chunks)
	if err != nil {
		return nil, err
	}
	report.Added = added
	return report, nil
}

// index embeds and adds chunks to their target indices, saving each
// index that actually grew.
func (s *IngestService) index(ctx context.Context, chunks []domain.Chunk) (int, error) {
	textBound, imageBound := partition(chunks)

	added := 0

	if len(textBound) > 0 {
		n, err := s.addText(ctx, textBound)
		if err != nil {
			return 0, err
		}
		added += n
	}

	if len(imageBound) > 0 {
		if s.imageEmbedder == nil || s.imageIndex == nil {
			logger.Warn("no image embedder configured, %d visual chunks persisted but not indexed", len(imageBound))
		} else {
			n, err := s.addImage(ctx, imageBound)
			if err != nil {
				return 0, err
			}
			added += n
		}
	}

	return added, nil
}

// addText embeds text-bound chunks and adds them to the text index.
// Embedding happens before any index call so the index lock is held
// only for index work.
func (s *IngestService) addText(ctx context.Context, chunks []domain.Chunk) (int, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Payload.Value()
	}

	vecs, err := s.textEmbedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed text chunks: %w", err)
	}

	n, err := s.textIndex.Add(ctx, vecs, chunks)
	if err != nil {
		return 0, fmt.Errorf("add to text index: %w", err)
	}
	if n > 0 {
		if err := s.textIndex.Save(); err != nil {
			return 0, fmt.Errorf("save text index: %w", err)
		}
	}
	return n, nil
}

// addImage embeds image-bound chunks into the cross-modal space and
// adds them to the image index. Media-reference payloads go through the
// image pathway; caption and OCR chunks carry text and go through the
// cross-modal text pathway.
func (s *IngestService) addImage(ctx context.Context, chunks []domain.Chunk) (int, error) {
	vecs := make([][]float32, len(chunks))

	var mediaIdx []int
	var mediaPaths []string
	var textIdx []int
	var texts []string
	for i, c := range chunks {
		if c.Payload.Kind == domain.PayloadMediaReference {
			mediaIdx = append(mediaIdx, i)
			mediaPaths = append(mediaPaths, c.Payload.MediaRef)
		} else {
			textIdx = append(textIdx, i)
			texts = append(texts, c.Payload.Text)
		}
	}

	if len(mediaPaths) > 0 {
		embedded, err := s.imageEmbedder.EmbedImages(ctx, mediaPaths)
		if err != nil {
			return 0, fmt.Errorf("embed images: %w", err)
		}
		if len(embedded) != len(mediaPaths) {
			return 0, fmt.Errorf("%w: got %d vectors for %d images", domain.ErrEmbeddingUnavailable, len(embedded), len(mediaPaths))
		}
		for j, i := range mediaIdx {
			vecs[i] = embedded[j]
		}
	}

	if len(texts) > 0 {
		embedded, err := s.imageEmbedder.EmbedText(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed captions: %w", err)
		}
		if len(embedded) != len(texts) {
			return 0, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingUnavailable, len(embedded), len(texts))
		}
		for j, i := range textIdx {
			vecs[i] = embedded[j]
		}
	}

	n, err := s.imageIndex.Add(ctx, vecs, chunks)
	if err != nil {
		return 0, fmt.Errorf("add to image index: %w", err)
	}
	if n > 0 {
		if err := s.imageIndex.Save(); err != nil {
			return 0, fmt.Errorf("save image index: %w", err)
		}
	}
	return n, nil
}

// partition splits chunks by target index. Visual chunks and their
// derived captions/OCR text live in the cross-modal image index; every
// other modality is text-indexed.
func partition(chunks []domain.Chunk) (textBound, imageBound []domain.Chunk) {
	for _, c := range chunks {
		switch c.SourceType {
		case domain.SourceTypeImage, domain.SourceTypeVideoFrame,
			domain.SourceTypeImageText, domain.SourceTypeImageCaption:
			imageBound = append(imageBound, c)
		default:
			textBound = append(textBound, c)
		}
	}
	return textBound, imageBound
}

// RemoveSource deletes all chunks for a source file from the metadata
// store. Vector entries for the deleted ids remain until the next
// rebuild; retrieval drops them at resolution time.
func (s *IngestService) RemoveSource(ctx context.Context, sourceFile string) (int, error) {
	deleted, err := s.chunkStore.DeleteChunksBySource(ctx, sourceFile)
	if err != nil {
		return 0, fmt.Errorf("delete chunks for %s: %w", sourceFile, err)
	}
	if deleted > 0 {
		logger.Info("removed %d chunks for %s; rebuild indexes to drop their vectors", deleted, sourceFile)
	}
	return deleted, nil
}

// RebuildIndexes wipes both vector indices and re-embeds every stored
// chunk from the metadata store. This is the reconciliation path after
// RemoveSource or index corruption.
func (s *IngestService) RebuildIndexes(ctx context.Context) error {
	chunks, err := s.chunkStore.GetAllChunks(ctx)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}

	if err := s.textIndex.Reset(); err != nil {
		return fmt.Errorf("reset text index: %w", err)
	}
	if s.imageIndex != nil {
		if err := s.imageIndex.Reset(); err != nil {
			return fmt.Errorf("reset image index: %w", err)
		}
	}

	if len(chunks) == 0 {
		return nil
	}

	added, err := s.index(ctx, chunks)
	if err != nil {
		return err
	}
	logger.Info("rebuilt indexes with %d vectors from %d chunks", added, len(chunks))
	return nil
}
