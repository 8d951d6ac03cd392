package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

func TestCreateConversation(t *testing.T) {
	store := setupTestStore(t)
	history := store.HistoryStore()
	ctx := context.Background()

	created, err := history.CreateConversation(ctx, "chat-1", "What is RAG?")
	require.NoError(t, err)
	assert.True(t, created)

	// Creating the same id again reports false, not an error.
	created, err = history.CreateConversation(ctx, "chat-1", "other title")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAddAndGetMessages(t *testing.T) {
	store := setupTestStore(t)
	history := store.HistoryStore()
	ctx := context.Background()

	_, err := history.CreateConversation(ctx, "chat-1", "capitals")
	require.NoError(t, err)

	page := 3
	sources := []domain.Source{{
		SourceType: domain.SourceTypePDF,
		SourceFile: "geo.pdf",
		PageNumber: &page,
	}}

	require.NoError(t, history.AddMessage(ctx, "chat-1", "user", "What is the capital of France?", nil))
	require.NoError(t, history.AddMessage(ctx, "chat-1", "assistant", "Paris.", sources))

	conv, err := history.GetConversation(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "capitals", conv.Title)
	require.Len(t, conv.Messages, 2)

	assert.Equal(t, "user", conv.Messages[0].Role)
	assert.Nil(t, conv.Messages[0].Sources)

	assert.Equal(t, "assistant", conv.Messages[1].Role)
	require.Len(t, conv.Messages[1].Sources, 1)
	assert.Equal(t, "geo.pdf", conv.Messages[1].Sources[0].SourceFile)
	require.NotNil(t, conv.Messages[1].Sources[0].PageNumber)
	assert.Equal(t, 3, *conv.Messages[1].Sources[0].PageNumber)
}

func TestGetConversationNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.HistoryStore().GetConversation(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListConversations(t *testing.T) {
	store := setupTestStore(t)
	history := store.HistoryStore()
	ctx := context.Background()

	_, err := history.CreateConversation(ctx, "chat-1", "first")
	require.NoError(t, err)
	_, err = history.CreateConversation(ctx, "chat-2", "second")
	require.NoError(t, err)

	convs, err := history.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
	for _, conv := range convs {
		assert.Empty(t, conv.Messages)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	store := setupTestStore(t)
	history := store.HistoryStore()
	ctx := context.Background()

	_, err := history.CreateConversation(ctx, "chat-1", "doomed")
	require.NoError(t, err)
	require.NoError(t, history.AddMessage(ctx, "chat-1", "user", "hello", nil))

	require.NoError(t, history.DeleteConversation(ctx, "chat-1"))

	_, err = history.GetConversation(ctx, "chat-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Messages are gone too.
	var count int
	row := store.db.QueryRow("SELECT COUNT(*) FROM messages WHERE chat_id = ?", "chat-1")
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}
