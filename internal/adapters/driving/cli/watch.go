package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Auto-ingest files dropped into a directory",
	Long: `Watches a directory and ingests supported files as they appear.
Runs until interrupted. The directory defaults to watch_dir from the
config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := cfg.WatchDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no watch directory: pass one or set watch_dir in config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := services.NewWatcher(ingestSvc, dir)

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	err := watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
