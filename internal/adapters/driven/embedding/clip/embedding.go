// Package clip provides a cross-modal embedding adapter backed by a
// local CLIP inference server. Text and images are embedded into one
// shared vector space, which is what lets a text question retrieve
// image chunks.
package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// Ensure ImageEmbedder implements the interface.
var _ driven.ImageEmbedder = (*ImageEmbedder)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8089"
	DefaultModel      = "clip-vit-base-patch32"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 512

	// DefaultRate throttles embedding requests; image encoding is
	// slower than text so the ceiling is lower than the text embedder.
	DefaultRate = 5 // requests per second
)

// Config holds configuration for the CLIP embedding service.
type Config struct {
	// BaseURL is the CLIP server base URL (default: http://localhost:8089).
	BaseURL string

	// Model is the CLIP model name (default: clip-vit-base-patch32).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (default: 512).
	Dimensions int

	// RequestsPerSecond throttles requests (default: 5).
	RequestsPerSecond float64
}

// ImageEmbedder generates cross-modal embeddings via a CLIP server.
type ImageEmbedder struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	model      string
	dimensions int
}

// embedTextRequest is the /embed/text request format.
type embedTextRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

// embedImageRequest is the /embed/image request format. Paths are
// local filesystem references; the server runs on the same host.
type embedImageRequest struct {
	Model string   `json:"model"`
	Paths []string `json:"paths"`
}

// embedResponse is the response format for both endpoints.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewImageEmbedder creates a new CLIP embedding service.
func NewImageEmbedder(cfg Config) *ImageEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRate
	}

	return &ImageEmbedder{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedText embeds texts into the cross-modal space.
func (s *ImageEmbedder) EmbedText(ctx context.Context, texts []string) ([][]float32, error) {
	return s.embed(ctx, "/embed/text", embedTextRequest{Model: s.model, Texts: texts})
}

// EmbedImages embeds image files referenced by path.
func (s *ImageEmbedder) EmbedImages(ctx context.Context, paths []string) ([][]float32, error) {
	return s.embed(ctx, "/embed/image", embedImageRequest{Model: s.model, Paths: paths})
}

func (s *ImageEmbedder) embed(ctx context.Context, endpoint string, reqBody any) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+endpoint,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("clip error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("clip error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	embeddings := make([][]float32, len(embedResp.Embeddings))
	for i, vec := range embedResp.Embeddings {
		embedding := make([]float32, len(vec))
		for j, v := range vec {
			embedding[j] = float32(v)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *ImageEmbedder) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *ImageEmbedder) ModelName() string {
	return s.model
}

// Ping validates the service is reachable.
func (s *ImageEmbedder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("clip: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("clip: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clip: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *ImageEmbedder) Close() error {
	return nil
}
