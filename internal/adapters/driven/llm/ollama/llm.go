// Package ollama provides the answer generation adapter using Ollama.
//
// The not-found contract is enforced here: the model is prompted to
// emit the canonical fallback sentence when the context does not hold
// the answer, and this adapter maps that output (or an empty output)
// onto domain.Answer{Found: false}. Callers never pattern match model
// text themselves.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "mistral"
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens bounds each generation. There is no first-class
	// timeout on inference, so the token budget doubles as one.
	DefaultMaxTokens = 300

	// historyTurns is how many trailing history messages make it into
	// the prompt.
	historyTurns = 6
)

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generation model to use (default: mistral).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens bounds each generation (default: 300).
	MaxTokens int

	// Temperature controls randomness (default 0.1: extraction, not
	// creativity).
	Temperature float64
}

// Generator produces grounded answers using Ollama.
type Generator struct {
	client      *http.Client
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// generateResponse is the Ollama /api/generate response format. In
// streaming mode one of these arrives per line.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a new Ollama generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// GenerateAnswer produces the full answer synchronously. With no
// contexts it returns the not-found answer without calling the model.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, contexts []driven.GenerationContext, history []domain.ChatMessage) (domain.Answer, error) {
	if len(contexts) == 0 {
		return domain.NotFound(), nil
	}

	resp, err := g.send(ctx, g.buildPrompt(question, contexts, history), false)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return domain.Answer{}, fmt.Errorf("%w: decode response: %v", domain.ErrGenerationFailed, err)
	}

	return g.toAnswer(genResp.Response), nil
}

// GenerateStream produces the answer as a stream of fragments. The
// channel is closed on completion; backend failures mid-stream arrive
// as a terminal event with Err set. Cancelling ctx abandons the stream
// and the underlying request.
func (g *Generator) GenerateStream(ctx context.Context, question string, contexts []driven.GenerationContext, history []domain.ChatMessage) (<-chan domain.StreamEvent, error) {
	events := make(chan domain.StreamEvent)

	if len(contexts) == 0 {
		go func() {
			defer close(events)
			select {
			case events <- domain.StreamEvent{Token: domain.NotFoundAnswer}:
			case <-ctx.Done():
			}
		}()
		return events, nil
	}

	resp, err := g.send(ctx, g.buildPrompt(question, contexts, history), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk generateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				g.emit(ctx, events, domain.StreamEvent{
					Err: fmt.Errorf("%w: decode stream: %v", domain.ErrGenerationFailed, err),
				})
				return
			}

			if chunk.Response != "" {
				if !g.emit(ctx, events, domain.StreamEvent{Token: chunk.Response}) {
					return
				}
			}
			if chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
			g.emit(ctx, events, domain.StreamEvent{
				Err: fmt.Errorf("%w: read stream: %v", domain.ErrGenerationFailed, err),
			})
		}
	}()

	return events, nil
}

// emit sends an event unless the consumer is gone. Returns false when
// the stream was abandoned.
func (g *Generator) emit(ctx context.Context, events chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// send posts a generate request.
func (g *Generator) send(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBody := generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: stream,
		Options: &options{
			NumPredict:  g.maxTokens,
			Temperature: g.temperature,
			Stop:        []string{"Question:"},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// toAnswer maps raw model output onto the answer contract.
func (g *Generator) toAnswer(raw string) domain.Answer {
	answer := strings.TrimSpace(raw)
	if answer == "" || strings.Contains(answer, domain.NotFoundAnswer) {
		return domain.NotFound()
	}
	return domain.Answer{Text: answer, Found: true}
}

// buildPrompt assembles the grounded extraction prompt: numbered
// context blocks with citation fields, a trailing slice of history,
// and rules that forbid answering beyond the context.
func (g *Generator) buildPrompt(question string, contexts []driven.GenerationContext, history []domain.ChatMessage) string {
	var b strings.Builder

	b.WriteString("You are a helpful AI assistant.\n\n")
	b.WriteString("The user may ask questions in any language.\n")
	b.WriteString("You MUST always respond in English.\n")
	b.WriteString("Use only the provided context to answer.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Extract relevant information directly from the context\n")
	b.WriteString("- Do NOT speculate or make assumptions\n")
	b.WriteString("- Do NOT extend beyond what is in the context\n")
	b.WriteString("- If the answer is not found in the context, respond exactly with:\n")
	b.WriteString("\"" + domain.NotFoundAnswer + "\"\n")

	if block := formatHistory(history); block != "" {
		b.WriteString("\nConversation history:\n")
		b.WriteString(block)
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")

	for i, c := range contexts {
		fmt.Fprintf(&b, "[Source %d | File: %s", i+1, c.SourceFile)
		if c.PageNumber != nil {
			fmt.Fprintf(&b, " | Page: %d", *c.PageNumber)
		}
		if c.Timestamp != nil {
			fmt.Fprintf(&b, " | Timestamp: %.1fs", *c.Timestamp)
		}
		b.WriteString("]\n")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}

	b.WriteString("Answer (in English):\n")
	return b.String()
}

// formatHistory renders the trailing history turns, skipping blanks.
func formatHistory(history []domain.ChatMessage) string {
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}

	var lines []string
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := msg.Role
		if role == "" {
			role = "user"
		}
		lines = append(lines, capitalize(role)+": "+content)
	}
	return strings.Join(lines, "\n")
}

// capitalize uppercases the first byte of an ASCII role name.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ModelName returns the generation model name.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the backend is reachable.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
