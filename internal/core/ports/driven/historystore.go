package driven

import (
	"context"
	"time"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

// Conversation is a stored chat with its ordered messages.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Messages  []StoredMessage
}

// StoredMessage is one persisted message of a conversation.
type StoredMessage struct {
	Role      string
	Content   string
	Sources   []domain.Source
	CreatedAt time.Time
}

// HistoryStore persists conversations and their messages. It shares the
// database file with the chunk store but is otherwise independent of
// retrieval.
type HistoryStore interface {
	// CreateConversation registers a new conversation. Returns false
	// when the id already exists.
	CreateConversation(ctx context.Context, id, title string) (bool, error)

	// AddMessage appends a message to a conversation.
	AddMessage(ctx context.Context, conversationID, role, content string, sources []domain.Source) error

	// GetConversation returns a conversation with messages ordered by
	// insertion, or domain.ErrNotFound.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// ListConversations returns conversations newest-first, without
	// messages.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// DeleteConversation removes a conversation and its messages.
	DeleteConversation(ctx context.Context, id string) error
}
