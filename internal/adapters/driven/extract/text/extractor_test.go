package text

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractSmallFile(t *testing.T) {
	path := writeTestFile(t, "The quick brown fox jumps over the lazy dog.")

	ext := New()
	chunks, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "The quick brown fox jumps over the lazy dog.", chunks[0].Payload.Text)
	assert.Equal(t, domain.SourceTypeText, chunks[0].SourceType)
	assert.Equal(t, "doc.txt", chunks[0].SourceFile)
}

func TestExtractEmptyFile(t *testing.T) {
	path := writeTestFile(t, "   \n\n  ")

	ext := New()
	chunks, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestExtractSplitsLongContent(t *testing.T) {
	content := strings.Repeat("word ", 300) // 1500 chars
	path := writeTestFile(t, content)

	ext := New(WithChunkSize(500), WithOverlap(50))
	chunks, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)

	require.Greater(t, len(chunks), 2)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Payload.Text), 500, "chunk %d too large", i)
		assert.NotEmpty(t, c.Payload.Text)
	}
}

func TestExtractBreaksAtWhitespace(t *testing.T) {
	content := strings.Repeat("avocado banana ", 100)
	path := writeTestFile(t, content)

	ext := New(WithChunkSize(100), WithOverlap(0))
	chunks, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)

	for i, c := range chunks {
		for _, word := range strings.Fields(c.Payload.Text) {
			assert.Contains(t, []string{"avocado", "banana"}, word, "chunk %d split a word", i)
		}
	}
}

func TestExtractDeterministicIDs(t *testing.T) {
	content := strings.Repeat("repeatable content here ", 60)
	path := writeTestFile(t, content)

	ext := New()
	first, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)
	second, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	path := writeTestFile(t, "content")

	ext := New()
	_, err := ext.Extract(context.Background(), path, domain.SourceTypePDF, "doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestExtractMissingFile(t *testing.T) {
	ext := New()
	_, err := ext.Extract(context.Background(), "/nonexistent/file.txt", domain.SourceTypeText, "file.txt")
	require.Error(t, err)
}

func TestExtractNormalizesLineEndings(t *testing.T) {
	path := writeTestFile(t, "line one\r\nline two\r\n")

	ext := New()
	chunks, err := ext.Extract(context.Background(), path, domain.SourceTypeText, "doc.txt")
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "line one\nline two", chunks[0].Payload.Text)
}

func TestSupportedTypes(t *testing.T) {
	ext := New()
	assert.Equal(t, []string{domain.SourceTypeText}, ext.SupportedTypes())
}
