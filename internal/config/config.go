// Package config loads AegisRAG configuration from a TOML file with
// environment overrides. Defaults cover a fully local setup (Ollama on
// localhost, data under ~/.aegisrag), so a missing config file is not
// an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	// DataDir holds the SQLite database and the vector index snapshot
	// files.
	DataDir string `toml:"data_dir"`

	// WatchDir is the drop directory for auto-ingestion. Empty
	// disables watching.
	WatchDir string `toml:"watch_dir"`

	Embedding  Embedding  `toml:"embedding"`
	Image      Image      `toml:"image"`
	Generation Generation `toml:"generation"`
	Retrieval  Retrieval  `toml:"retrieval"`
}

// Embedding configures the text embedder.
type Embedding struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// Image configures the optional cross-modal embedder.
type Image struct {
	// Enabled turns the image side of retrieval on.
	Enabled bool `toml:"enabled"`

	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// Generation configures the answer generator.
type Generation struct {
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	TimeoutSec  int     `toml:"timeout_sec"`
}

// Retrieval configures the ranking pipeline.
type Retrieval struct {
	// TopK is the default number of chunks retrieved per query.
	TopK int `toml:"top_k"`

	// DiversityCap bounds accepted chunks per source type. Zero
	// disables the cap.
	DiversityCap int `toml:"diversity_cap"`
}

// Default returns the configuration for a fully local setup.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir: filepath.Join(home, ".aegisrag"),
		Embedding: Embedding{
			BaseURL:    "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			TimeoutSec: 60,
		},
		Image: Image{
			Enabled:    false,
			BaseURL:    "http://localhost:8089",
			Model:      "clip-vit-base-patch32",
			Dimensions: 512,
			TimeoutSec: 60,
		},
		Generation: Generation{
			BaseURL:     "http://localhost:11434",
			Model:       "mistral",
			MaxTokens:   300,
			Temperature: 0.1,
			TimeoutSec:  120,
		},
		Retrieval: Retrieval{
			TopK: 5,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides. A .env file
// in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults apply.
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Embedding.Dimensions <= 0 {
		return Config{}, fmt.Errorf("embedding dimensions must be positive, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Image.Enabled && cfg.Image.Dimensions <= 0 {
		return Config{}, fmt.Errorf("image dimensions must be positive, got %d", cfg.Image.Dimensions)
	}
	return cfg, nil
}

// applyEnv overrides file values with AEGISRAG_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.DataDir, "AEGISRAG_DATA_DIR")
	setString(&c.WatchDir, "AEGISRAG_WATCH_DIR")
	setString(&c.Embedding.BaseURL, "AEGISRAG_OLLAMA_URL")
	setString(&c.Embedding.Model, "AEGISRAG_EMBEDDING_MODEL")
	setInt(&c.Embedding.Dimensions, "AEGISRAG_EMBEDDING_DIMENSIONS")
	setString(&c.Generation.BaseURL, "AEGISRAG_OLLAMA_URL")
	setString(&c.Generation.Model, "AEGISRAG_GENERATION_MODEL")
	setString(&c.Image.BaseURL, "AEGISRAG_CLIP_URL")
	setInt(&c.Retrieval.TopK, "AEGISRAG_TOP_K")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Timeout helpers convert the second-denominated fields.

// Timeout returns the embedder request timeout.
func (e Embedding) Timeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// Timeout returns the image embedder request timeout.
func (i Image) Timeout() time.Duration {
	return time.Duration(i.TimeoutSec) * time.Second
}

// Timeout returns the generation request timeout.
func (g Generation) Timeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}
