package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// CreateConversation registers a new conversation. Returns false when
// the id already exists.
func (s *historyStore) CreateConversation(ctx context.Context, id, title string) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO conversations (chat_id, title, created_at)
		VALUES (?, ?, ?)
	`, id, title, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("creating conversation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting inserted rows: %w", err)
	}
	return rows > 0, nil
}

// AddMessage appends a message to a conversation.
func (s *historyStore) AddMessage(ctx context.Context, conversationID, role, content string, sources []domain.Source) error {
	var sourcesJSON any
	if len(sources) > 0 {
		data, err := json.Marshal(sources)
		if err != nil {
			return fmt.Errorf("marshalling sources: %w", err)
		}
		sourcesJSON = string(data)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO messages (chat_id, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, conversationID, role, content, sourcesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adding message: %w", err)
	}
	return nil
}

// GetConversation returns a conversation with its messages in insertion
// order.
func (s *historyStore) GetConversation(ctx context.Context, id string) (*driven.Conversation, error) {
	conv := driven.Conversation{ID: id}

	row := s.store.db.QueryRowContext(ctx,
		"SELECT title, created_at FROM conversations WHERE chat_id = ?", id)
	if err := row.Scan(&conv.Title, &conv.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT role, content, sources, created_at
		FROM messages WHERE chat_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg         driven.StoredMessage
			sourcesJSON sql.NullString
		)
		if err := rows.Scan(&msg.Role, &msg.Content, &sourcesJSON, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if sourcesJSON.Valid && strings.TrimSpace(sourcesJSON.String) != "" {
			// Unparseable stored sources degrade to none rather than
			// failing the whole read.
			_ = json.Unmarshal([]byte(sourcesJSON.String), &msg.Sources)
		}
		conv.Messages = append(conv.Messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return &conv, nil
}

// ListConversations returns conversations newest-first, without
// messages.
func (s *historyStore) ListConversations(ctx context.Context) ([]driven.Conversation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chat_id, title, created_at
		FROM conversations
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []driven.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var conv driven.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes a conversation; messages cascade.
func (s *historyStore) DeleteConversation(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE chat_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}
