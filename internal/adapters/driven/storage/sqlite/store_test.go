package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func pdfChunk(sourceFile string, position int) domain.Chunk {
	page := position + 1
	c := domain.NewChunk(
		domain.TextPayload("page content"),
		domain.SourceTypePDF, sourceFile, position)
	return c.WithPage(page)
}

func TestNewStoreRequiresDataDir(t *testing.T) {
	_, err := NewStore("")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveChunksInsertsAndCounts(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	inserted, err := chunks.SaveChunks(ctx, []domain.Chunk{
		pdfChunk("a.pdf", 0),
		pdfChunk("a.pdf", 1),
		pdfChunk("a.pdf", 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
}

func TestSaveChunksIgnoresDuplicates(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	batch := []domain.Chunk{pdfChunk("a.pdf", 0), pdfChunk("a.pdf", 1)}

	inserted, err := chunks.SaveChunks(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-ingestion of identical deterministic ids is a counted no-op.
	inserted, err = chunks.SaveChunks(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	all, err := chunks.GetAllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDuplicateIDKeepsOriginalPayload(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	original := domain.NewChunk(domain.TextPayload("original"), domain.SourceTypePDF, "a.pdf", 0)
	_, err := chunks.SaveChunks(ctx, []domain.Chunk{original})
	require.NoError(t, err)

	conflicting := original
	conflicting.Payload = domain.TextPayload("replacement")
	inserted, err := chunks.SaveChunks(ctx, []domain.Chunk{conflicting})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	got, err := chunks.GetChunk(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Payload.Value())
}

func TestGetChunkRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	ts := 12.5
	chunk := domain.NewChunk(
		domain.TextPayload("transcript segment"),
		domain.SourceTypeAudio, "talk.mp3", 4).WithTimestamp(ts)

	_, err := chunks.SaveChunks(ctx, []domain.Chunk{chunk})
	require.NoError(t, err)

	got, err := chunks.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, chunk.ID, got.ID)
	assert.Equal(t, domain.PayloadText, got.Payload.Kind)
	assert.Equal(t, "transcript segment", got.Payload.Text)
	assert.Equal(t, domain.SourceTypeAudio, got.SourceType)
	assert.Equal(t, "talk.mp3", got.SourceFile)
	assert.Nil(t, got.PageNumber)
	require.NotNil(t, got.Timestamp)
	assert.InDelta(t, ts, *got.Timestamp, 1e-9)
}

func TestGetChunkReconstructsMediaPayload(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	chunk := domain.NewChunk(
		domain.MediaPayload("/data/frames/frame_0001.jpg"),
		domain.SourceTypeVideoFrame, "clip.mp4", 1)

	_, err := chunks.SaveChunks(ctx, []domain.Chunk{chunk})
	require.NoError(t, err)

	got, err := chunks.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayloadMediaReference, got.Payload.Kind)
	assert.Equal(t, "/data/frames/frame_0001.jpg", got.Payload.MediaRef)
	assert.Equal(t, "/data/frames/frame_0001.jpg", got.Payload.Value())
}

func TestGetChunkNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ChunkStore().GetChunk(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetChunksBySource(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	_, err := chunks.SaveChunks(ctx, []domain.Chunk{
		pdfChunk("a.pdf", 0),
		pdfChunk("a.pdf", 1),
		pdfChunk("b.pdf", 0),
	})
	require.NoError(t, err)

	got, err := chunks.GetChunksBySource(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, "a.pdf", c.SourceFile)
	}

	got, err = chunks.GetChunksBySource(ctx, "nope.pdf")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteChunksBySource(t *testing.T) {
	store := setupTestStore(t)
	chunks := store.ChunkStore()
	ctx := context.Background()

	_, err := chunks.SaveChunks(ctx, []domain.Chunk{
		pdfChunk("a.pdf", 0),
		pdfChunk("a.pdf", 1),
		pdfChunk("b.pdf", 0),
	})
	require.NoError(t, err)

	deleted, err := chunks.DeleteChunksBySource(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	all, err := chunks.GetAllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b.pdf", all[0].SourceFile)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.ChunkStore().SaveChunks(ctx, []domain.Chunk{pdfChunk("a.pdf", 0)})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.ChunkStore().GetAllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
