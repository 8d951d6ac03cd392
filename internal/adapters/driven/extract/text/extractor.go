// Package text provides a plaintext extractor that splits files into
// overlapping fixed-size chunks with deterministic identifiers, so
// re-extracting the same file yields the same chunk IDs.
package text

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Extractor splits plaintext files into overlapping chunks.
type Extractor struct {
	chunkSize int
	overlap   int
}

// Option configures the extractor.
type Option func(*Extractor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(e *Extractor) {
		if overlap >= 0 {
			e.overlap = overlap
		}
	}
}

// New creates a new plaintext extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.overlap >= e.chunkSize {
		e.overlap = e.chunkSize / 4
	}

	return e
}

// SupportedTypes returns the source types this extractor handles.
func (e *Extractor) SupportedTypes() []string {
	return []string{domain.SourceTypeText}
}

// Extract reads the file and splits it into chunks. Chunk IDs are
// derived from the source file, type, and position, so the same file
// always produces the same IDs.
func (e *Extractor) Extract(ctx context.Context, filePath, fileType, sourceID string) ([]domain.Chunk, error) {
	if fileType != domain.SourceTypeText {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, fileType)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, filePath)
	}

	content := normalize(string(data))
	if content == "" {
		return nil, nil
	}

	runes := []rune(content)
	contentLen := len(runes)

	estimatedChunks := (contentLen / (e.chunkSize - e.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + e.chunkSize
		if end > contentLen {
			end = contentLen
		} else {
			end = breakAt(runes, start, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, domain.NewChunk(
				domain.TextPayload(piece),
				domain.SourceTypeText,
				sourceID,
				position,
			))
			position++
		}

		if end == contentLen {
			break
		}
		next := end - e.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// breakAt moves a cut point back to the nearest whitespace so words
// are not split, unless no whitespace exists in the window.
func breakAt(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		switch runes[i-1] {
		case ' ', '\t', '\n':
			return i
		}
	}
	return end
}

// normalize collapses Windows line endings and trims outer whitespace.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}
