// Package cli implements the command-line interface for AegisRAG.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/embedding/clip"
	ollamaembed "github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/embedding/ollama"
	exttext "github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/extract/text"
	ollamallm "github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/llm/ollama"
	"github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/storage/sqlite"
	"github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/vector/flat"
	"github.com/SubikshaRamesh/AegisRAG/internal/config"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/services"
	"github.com/SubikshaRamesh/AegisRAG/internal/logger"
)

var (
	cfgPath string
	verbose bool

	cfg          config.Config
	store        *sqlite.Store
	textIndex    *flat.Index
	imageIndex   *flat.Index
	queryService *services.QueryService
	ingestSvc    *services.IngestService
	historyStore driven.HistoryStore
)

var rootCmd = &cobra.Command{
	Use:   "aegisrag",
	Short: "Local multimodal RAG over your documents",
	Long: `AegisRAG answers questions over locally ingested documents using
vector retrieval and a local LLM. All data stays on your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: $AEGISRAG_DATA_DIR/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initServices wires the adapters and services from configuration.
// Everything is constructed once per process and reused across the
// command's lifetime.
func initServices() error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	historyStore = store.HistoryStore()

	textIndex, err = flat.New(cfg.DataDir, "text", cfg.Embedding.Dimensions)
	if err != nil {
		return fmt.Errorf("open text index: %w", err)
	}

	textEmbedder := ollamaembed.NewTextEmbedder(ollamaembed.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Timeout:    cfg.Embedding.Timeout(),
		Dimensions: cfg.Embedding.Dimensions,
	})

	generator := ollamallm.NewGenerator(ollamallm.Config{
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Timeout:     cfg.Generation.Timeout(),
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
	})

	var imageEmbedder driven.ImageEmbedder
	if cfg.Image.Enabled {
		imageIndex, err = flat.New(cfg.DataDir, "image", cfg.Image.Dimensions)
		if err != nil {
			return fmt.Errorf("open image index: %w", err)
		}
		imageEmbedder = clip.NewImageEmbedder(clip.Config{
			BaseURL:    cfg.Image.BaseURL,
			Model:      cfg.Image.Model,
			Timeout:    cfg.Image.Timeout(),
			Dimensions: cfg.Image.Dimensions,
		})
	}

	// The *flat.Index is nil when image retrieval is disabled; the
	// services take the interface, which must then also be nil.
	var imageIdx driven.VectorIndex
	if imageIndex != nil {
		imageIdx = imageIndex
	}

	queryService = services.NewQueryService(
		textEmbedder, imageEmbedder, textIndex, imageIdx, store.ChunkStore(), generator,
		services.WithDiversityCap(cfg.Retrieval.DiversityCap),
		services.WithDatabasePath(store.Path()),
	)

	ingestSvc = services.NewIngestService(
		store.ChunkStore(), textEmbedder, imageEmbedder, textIndex, imageIdx,
	)
	ingestSvc.RegisterExtractor(exttext.New())

	return nil
}

// shutdown releases adapter resources.
func shutdown() error {
	var firstErr error
	if textIndex != nil {
		if err := textIndex.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if imageIndex != nil {
		if err := imageIndex.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if store != nil {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
