package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear both vector indices",
	Long: `Clears the text and image vector indices in memory and on disk.
Chunk metadata is kept; run "aegisrag rebuild" to re-index it.`,
	RunE: runReset,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector indices from stored chunks",
	Long: `Wipes both vector indices and re-embeds every chunk in the metadata
store. Use after removing a source or when an index snapshot is corrupt.`,
	RunE: runRebuild,
}

var removeCmd = &cobra.Command{
	Use:   "remove [source-file]",
	Short: "Remove all chunks of a source file",
	Long: `Deletes every chunk of the given source file from the metadata
store. Their vectors stay in the indices until the next rebuild and are
dropped from results in the meantime.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(removeCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if err := textIndex.Reset(); err != nil {
		return fmt.Errorf("reset text index: %w", err)
	}
	if imageIndex != nil {
		if err := imageIndex.Reset(); err != nil {
			return fmt.Errorf("reset image index: %w", err)
		}
	}
	cmd.Println("Indices cleared.")
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	if err := ingestSvc.RebuildIndexes(cmd.Context()); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	cmd.Printf("Rebuilt: %d text vectors", textIndex.Len())
	if imageIndex != nil {
		cmd.Printf(", %d image vectors", imageIndex.Len())
	}
	cmd.Println()
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	deleted, err := ingestSvc.RemoveSource(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Removed %d chunks for %s. Run \"aegisrag rebuild\" to drop their vectors.\n", deleted, args[0])
	return nil
}
