package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkIDDeterministic(t *testing.T) {
	a := NewChunkID("manual.pdf", SourceTypePDF, 3)
	b := NewChunkID("manual.pdf", SourceTypePDF, 3)
	assert.Equal(t, a, b)
}

func TestNewChunkIDDistinguishesInputs(t *testing.T) {
	base := NewChunkID("manual.pdf", SourceTypePDF, 3)

	assert.NotEqual(t, base, NewChunkID("other.pdf", SourceTypePDF, 3))
	assert.NotEqual(t, base, NewChunkID("manual.pdf", SourceTypeText, 3))
	assert.NotEqual(t, base, NewChunkID("manual.pdf", SourceTypePDF, 4))
}

func TestRandomChunkIDUnique(t *testing.T) {
	assert.NotEqual(t, RandomChunkID(), RandomChunkID())
}

func TestNewChunk(t *testing.T) {
	c := NewChunk(TextPayload("content"), SourceTypePDF, "manual.pdf", 0)

	assert.Equal(t, NewChunkID("manual.pdf", SourceTypePDF, 0), c.ID)
	assert.Equal(t, "content", c.Payload.Text)
	assert.Nil(t, c.PageNumber)
	assert.Nil(t, c.Timestamp)
}

func TestChunkWithPageAndTimestamp(t *testing.T) {
	base := NewChunk(TextPayload("x"), SourceTypePDF, "a.pdf", 0)

	paged := base.WithPage(7)
	require.NotNil(t, paged.PageNumber)
	assert.Equal(t, 7, *paged.PageNumber)
	assert.Nil(t, base.PageNumber, "WithPage returns a copy")

	timed := base.WithTimestamp(42.5)
	require.NotNil(t, timed.Timestamp)
	assert.Equal(t, 42.5, *timed.Timestamp)
}

func TestPayloadValue(t *testing.T) {
	assert.Equal(t, "hello", TextPayload("hello").Value())
	assert.Equal(t, "/media/p.jpg", MediaPayload("/media/p.jpg").Value())
}

func TestPayloadKindFor(t *testing.T) {
	tests := []struct {
		sourceType string
		want       PayloadKind
	}{
		{SourceTypePDF, PayloadText},
		{SourceTypeDOCX, PayloadText},
		{SourceTypeText, PayloadText},
		{SourceTypeAudio, PayloadText},
		{SourceTypeImageText, PayloadText},
		{SourceTypeImageCaption, PayloadText},
		{SourceTypeImage, PayloadMediaReference},
		{SourceTypeVideoFrame, PayloadMediaReference},
	}

	for _, tt := range tests {
		t.Run(tt.sourceType, func(t *testing.T) {
			assert.Equal(t, tt.want, PayloadKindFor(tt.sourceType))
		})
	}
}

func TestSourceFor(t *testing.T) {
	c := NewChunk(TextPayload("x"), SourceTypePDF, "manual.pdf", 0).WithPage(2)

	s := SourceFor(c)
	assert.Equal(t, SourceTypePDF, s.SourceType)
	assert.Equal(t, "manual.pdf", s.SourceFile)
	require.NotNil(t, s.PageNumber)
	assert.Equal(t, 2, *s.PageNumber)
	assert.Nil(t, s.Timestamp)
}

func TestNotFound(t *testing.T) {
	a := NotFound()
	assert.False(t, a.Found)
	assert.Equal(t, NotFoundAnswer, a.Text)
}
