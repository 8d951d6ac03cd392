package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

var ingestType string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a file into the knowledge base",
	Long: `Extracts, persists, embeds and indexes one file. Re-ingesting an
unchanged file is a no-op: every chunk already present is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "", "file type (default: inferred from extension)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	fileType := ingestType
	if fileType == "" {
		fileType = inferFileType(filePath)
	}

	report, err := ingestSvc.IngestFile(cmd.Context(), filePath, fileType)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	skipped := report.Extracted - report.Added
	cmd.Printf("%s: %d chunks added, %d duplicates skipped\n", report.SourceFile, report.Added, skipped)
	return nil
}

// inferFileType maps a file extension to a source type.
func inferFileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.SourceTypePDF
	case ".docx":
		return domain.SourceTypeDOCX
	default:
		return domain.SourceTypeText
	}
}
