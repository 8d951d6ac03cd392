package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Source types distinguish the modality and role of a chunk. The source
// type determines which vector index a chunk is embedded into and how its
// payload is interpreted.
const (
	SourceTypePDF          = "pdf"
	SourceTypeDOCX         = "docx"
	SourceTypeText         = "text"
	SourceTypeAudio        = "audio"
	SourceTypeVideo        = "video"
	SourceTypeImage        = "image"
	SourceTypeImageText    = "image_text"    // OCR output
	SourceTypeImageCaption = "image_caption" // generated caption
	SourceTypeVideoFrame   = "video_frame"
)

// chunkNamespace is the UUID namespace for deterministic chunk identities.
// Re-ingesting the same source file must produce identical ids, so the id
// is a name-based UUID over (source_file, source_type, position).
var chunkNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// PayloadKind discriminates the Payload variant.
type PayloadKind int

const (
	// PayloadText means the payload holds literal text content.
	PayloadText PayloadKind = iota

	// PayloadMediaReference means the payload holds a filesystem path
	// to visual content (raw images, extracted video frames).
	PayloadMediaReference
)

// Payload is a tagged variant for chunk content. Most modalities carry
// literal text; pure-visual chunks carry a reference to the media file
// instead.
type Payload struct {
	Kind PayloadKind

	// Text is the textual content. Set when Kind == PayloadText.
	Text string

	// MediaRef is a filesystem path to the media. Set when
	// Kind == PayloadMediaReference.
	MediaRef string
}

// TextPayload creates a literal-text payload.
func TextPayload(text string) Payload {
	return Payload{Kind: PayloadText, Text: text}
}

// MediaPayload creates a media-reference payload.
func MediaPayload(path string) Payload {
	return Payload{Kind: PayloadMediaReference, MediaRef: path}
}

// Value returns the stored string regardless of variant. This is what is
// persisted in the chunks table text column and what embedders consume.
func (p Payload) Value() string {
	if p.Kind == PayloadMediaReference {
		return p.MediaRef
	}
	return p.Text
}

// PayloadKindFor returns the payload variant expected for a source type.
// Raw images and extracted video frames reference media on disk; every
// other modality carries literal text.
func PayloadKindFor(sourceType string) PayloadKind {
	switch sourceType {
	case SourceTypeImage, SourceTypeVideoFrame:
		return PayloadMediaReference
	default:
		return PayloadText
	}
}

// Chunk is the smallest retrievable unit. Each chunk carries its own
// citation metadata and is immutable after creation.
type Chunk struct {
	// ID is globally unique and deterministic for file-based sources:
	// re-ingesting the same file yields the same ids, which makes
	// re-ingestion idempotent at both storage layers.
	ID string

	// Payload is the content: literal text for most modalities, a
	// media reference for raw visual chunks.
	Payload Payload

	// SourceType tags the modality (pdf, audio, image, ...).
	SourceType string

	// SourceFile is the base filename of the originating document,
	// never a path. Used for citation display and re-ingestion cleanup.
	SourceFile string

	// PageNumber is the 1-based page for PDF chunks, nil otherwise.
	PageNumber *int

	// Timestamp is the seconds offset for audio/video chunks, nil
	// otherwise.
	Timestamp *float64
}

// NewChunkID derives the deterministic identity for a chunk extracted at
// the given position of a source file.
func NewChunkID(sourceFile, sourceType string, position int) string {
	name := fmt.Sprintf("%s#%s#%d", sourceFile, sourceType, position)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// RandomChunkID returns a unique non-deterministic identity. Only for
// chunks whose extraction position cannot be made deterministic;
// NewChunkID is the required default for file-based sources.
func RandomChunkID() string {
	return uuid.New().String()
}

// NewChunk creates a chunk with a deterministic identity.
func NewChunk(payload Payload, sourceType, sourceFile string, position int) Chunk {
	return Chunk{
		ID:         NewChunkID(sourceFile, sourceType, position),
		Payload:    payload,
		SourceType: sourceType,
		SourceFile: sourceFile,
	}
}

// WithPage returns a copy of the chunk carrying a page number.
func (c Chunk) WithPage(page int) Chunk {
	c.PageNumber = &page
	return c
}

// WithTimestamp returns a copy of the chunk carrying a media offset.
func (c Chunk) WithTimestamp(seconds float64) Chunk {
	c.Timestamp = &seconds
	return c
}
