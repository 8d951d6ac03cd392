package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello world", req.Prompt)

		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	embedder := NewTextEmbedder(Config{BaseURL: server.URL, RequestsPerSecond: 1000})

	vec, err := embedder.Embed(context.Background(), "hello world")
	require.NoError(t, err)

	require.Len(t, vec, 3)
	assert.InDelta(t, 0.1, vec[0], 1e-6)
	assert.InDelta(t, 0.3, vec[2], 1e-6)
}

func TestEmbedBatch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{float64(calls)}})
	}))
	defer server.Close()

	embedder := NewTextEmbedder(Config{BaseURL: server.URL, RequestsPerSecond: 1000})

	vecs, err := embedder.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, vecs, 3)
	assert.Equal(t, 3, calls)
	assert.InDelta(t, 1.0, vecs[0][0], 1e-6)
	assert.InDelta(t, 3.0, vecs[2][0], 1e-6)
}

func TestEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder := NewTextEmbedder(Config{BaseURL: server.URL, RequestsPerSecond: 1000})

	_, err := embedder.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestEmbedContextCancelled(t *testing.T) {
	embedder := NewTextEmbedder(Config{BaseURL: "http://localhost:1", RequestsPerSecond: 1000})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := embedder.Embed(ctx, "text")
	require.Error(t, err)
}

func TestPingOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	embedder := NewTextEmbedder(Config{BaseURL: server.URL})
	require.NoError(t, embedder.Ping(context.Background()))
}

func TestPingUnreachable(t *testing.T) {
	embedder := NewTextEmbedder(Config{BaseURL: "http://localhost:1"})
	require.Error(t, embedder.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	embedder := NewTextEmbedder(Config{})
	assert.Equal(t, DefaultModel, embedder.ModelName())
	assert.Equal(t, DefaultDimensions, embedder.Dimensions())
}
