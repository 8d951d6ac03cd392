package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// DefaultHistoryWindow is how many recent messages a session serves to
// generation.
const DefaultHistoryWindow = 10

// Session tracks one conversation: a bounded in-memory window of recent
// messages for prompt context plus durable persistence of every
// message. All methods are safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	id     string
	window *domain.HistoryWindow
	store  driven.HistoryStore
}

// NewSession opens a session for the given conversation id, creating
// the conversation when it does not exist and replaying its stored
// messages into the window when it does. An empty id starts a fresh
// conversation. The store is optional (can be nil); without it history
// lives only in memory.
func NewSession(ctx context.Context, store driven.HistoryStore, id, title string) (*Session, error) {
	if id == "" {
		id = uuid.New().String()
	}

	s := &Session{
		id:     id,
		window: domain.NewHistoryWindow(DefaultHistoryWindow),
		store:  store,
	}
	if store == nil {
		return s, nil
	}

	created, err := store.CreateConversation(ctx, id, title)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	if created {
		return s, nil
	}

	conv, err := store.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	for _, msg := range conv.Messages {
		s.window.Append(domain.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return s, nil
}

// ID returns the conversation id.
func (s *Session) ID() string {
	return s.id
}

// AddUserMessage records a user turn.
func (s *Session) AddUserMessage(ctx context.Context, content string) error {
	return s.add(ctx, "user", content, nil)
}

// AddAssistantMessage records an assistant turn with its citations.
func (s *Session) AddAssistantMessage(ctx context.Context, content string, sources []domain.Source) error {
	return s.add(ctx, "assistant", content, sources)
}

func (s *Session) add(ctx context.Context, role, content string, sources []domain.Source) error {
	s.mu.Lock()
	s.window.Append(domain.ChatMessage{Role: role, Content: content})
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.AddMessage(ctx, s.id, role, content, sources); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	return nil
}

// History returns the recent messages oldest-first. The slice is a
// copy; concurrent appends never mutate it.
func (s *Session) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Messages()
}
