package services

import (
	"context"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockTextEmbedder implements driven.TextEmbedder for testing.
type mockTextEmbedder struct {
	embedding  []float32
	embedErr   error
	dims       int
	embedCalls int
}

func (m *mockTextEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockTextEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockTextEmbedder) Dimensions() int              { return m.dims }
func (m *mockTextEmbedder) ModelName() string            { return "mock-text-embedder" }
func (m *mockTextEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockTextEmbedder) Close() error                 { return nil }

// mockImageEmbedder implements driven.ImageEmbedder for testing.
type mockImageEmbedder struct {
	embedding  []float32
	embedErr   error
	dims       int
	textCalls  int
	imageCalls int
}

func (m *mockImageEmbedder) EmbedText(_ context.Context, texts []string) ([][]float32, error) {
	m.textCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockImageEmbedder) EmbedImages(_ context.Context, paths []string) ([][]float32, error) {
	m.imageCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(paths))
	for i := range paths {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockImageEmbedder) Dimensions() int              { return m.dims }
func (m *mockImageEmbedder) ModelName() string            { return "mock-image-embedder" }
func (m *mockImageEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockImageEmbedder) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []domain.RetrievedChunk
	length    int
	dim       int
	searchErr error
	addErr    error
	resetErr  error

	added       [][]domain.Chunk
	saveCalls   int
	resetCalls  int
	searchCalls int
}

func (m *mockVectorIndex) Add(_ context.Context, _ [][]float32, chunks []domain.Chunk) (int, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.added = append(m.added, chunks)
	return len(chunks), nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, topK int) ([]domain.RetrievedChunk, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockVectorIndex) Save() error {
	m.saveCalls++
	return nil
}

func (m *mockVectorIndex) Reset() error {
	m.resetCalls++
	if m.resetErr != nil {
		return m.resetErr
	}
	m.hits = nil
	m.length = 0
	return nil
}

func (m *mockVectorIndex) Len() int       { return m.length }
func (m *mockVectorIndex) Dimension() int { return m.dim }
func (m *mockVectorIndex) Close() error   { return nil }

// mockChunkStore implements driven.ChunkStore for testing.
type mockChunkStore struct {
	chunks   map[string]domain.Chunk
	saveErr  error
	getErr   error
	savedIDs []string
}

func newMockChunkStore(chunks ...domain.Chunk) *mockChunkStore {
	m := &mockChunkStore{chunks: make(map[string]domain.Chunk)}
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return m
}

func (m *mockChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	inserted := 0
	for _, c := range chunks {
		if _, ok := m.chunks[c.ID]; ok {
			continue
		}
		m.chunks[c.ID] = c
		m.savedIDs = append(m.savedIDs, c.ID)
		inserted++
	}
	return inserted, nil
}

func (m *mockChunkStore) GetChunk(_ context.Context, chunkID string) (*domain.Chunk, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.chunks[chunkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockChunkStore) GetChunksBySource(_ context.Context, sourceFile string) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for _, c := range m.chunks {
		if c.SourceFile == sourceFile {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockChunkStore) GetAllChunks(_ context.Context) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockChunkStore) DeleteChunksBySource(_ context.Context, sourceFile string) (int, error) {
	deleted := 0
	for id, c := range m.chunks {
		if c.SourceFile == sourceFile {
			delete(m.chunks, id)
			deleted++
		}
	}
	return deleted, nil
}

// mockGenerator implements driven.Generator for testing.
type mockGenerator struct {
	answer      domain.Answer
	generateErr error
	tokens      []string

	calls        int
	lastContexts []driven.GenerationContext
	lastHistory  []domain.ChatMessage
}

func (m *mockGenerator) GenerateAnswer(_ context.Context, _ string, contexts []driven.GenerationContext, history []domain.ChatMessage) (domain.Answer, error) {
	m.calls++
	m.lastContexts = contexts
	m.lastHistory = history
	if len(contexts) == 0 {
		return domain.NotFound(), nil
	}
	if m.generateErr != nil {
		return domain.Answer{}, m.generateErr
	}
	return m.answer, nil
}

func (m *mockGenerator) GenerateStream(_ context.Context, _ string, contexts []driven.GenerationContext, _ []domain.ChatMessage) (<-chan domain.StreamEvent, error) {
	m.calls++
	m.lastContexts = contexts
	if m.generateErr != nil {
		return nil, m.generateErr
	}

	events := make(chan domain.StreamEvent)
	go func() {
		defer close(events)
		if len(contexts) == 0 {
			events <- domain.StreamEvent{Token: domain.NotFoundAnswer}
			return
		}
		for _, tok := range m.tokens {
			events <- domain.StreamEvent{Token: tok}
		}
	}()
	return events, nil
}

func (m *mockGenerator) ModelName() string            { return "mock-generator" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

// mockExtractor implements driven.Extractor for testing.
type mockExtractor struct {
	chunks     []domain.Chunk
	extractErr error
	types      []string
}

func (m *mockExtractor) Extract(_ context.Context, _, _, _ string) ([]domain.Chunk, error) {
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.chunks, nil
}

func (m *mockExtractor) SupportedTypes() []string {
	return m.types
}

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	conversations map[string]*driven.Conversation
	addErr        error
}

func newMockHistoryStore() *mockHistoryStore {
	return &mockHistoryStore{conversations: make(map[string]*driven.Conversation)}
}

func (m *mockHistoryStore) CreateConversation(_ context.Context, id, title string) (bool, error) {
	if _, ok := m.conversations[id]; ok {
		return false, nil
	}
	m.conversations[id] = &driven.Conversation{ID: id, Title: title}
	return true, nil
}

func (m *mockHistoryStore) AddMessage(_ context.Context, conversationID, role, content string, sources []domain.Source) error {
	if m.addErr != nil {
		return m.addErr
	}
	conv, ok := m.conversations[conversationID]
	if !ok {
		return domain.ErrNotFound
	}
	conv.Messages = append(conv.Messages, driven.StoredMessage{Role: role, Content: content, Sources: sources})
	return nil
}

func (m *mockHistoryStore) GetConversation(_ context.Context, id string) (*driven.Conversation, error) {
	conv, ok := m.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return conv, nil
}

func (m *mockHistoryStore) ListConversations(_ context.Context) ([]driven.Conversation, error) {
	out := make([]driven.Conversation, 0, len(m.conversations))
	for _, c := range m.conversations {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockHistoryStore) DeleteConversation(_ context.Context, id string) error {
	delete(m.conversations, id)
	return nil
}
