package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index sizes and configured models",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := queryService.Status(cmd.Context())
	if err != nil {
		return err
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Text index:      %d vectors (dim %d)\n", status.TextVectors, status.TextDimension)
	if status.ImageDimension > 0 {
		cmd.Printf("Image index:     %d vectors (dim %d)\n", status.ImageVectors, status.ImageDimension)
	} else {
		cmd.Println("Image index:     disabled")
	}
	cmd.Printf("Embedding model: %s\n", status.EmbeddingModel)
	if status.ImageModel != "" {
		cmd.Printf("Image model:     %s\n", status.ImageModel)
	}
	cmd.Printf("LLM model:       %s\n", status.GenerationModel)
	cmd.Printf("Database:        %s\n", status.DatabasePath)
	return nil
}
