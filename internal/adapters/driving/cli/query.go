package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/services"
)

var (
	queryTopK    int
	queryStream  bool
	queryJSON    bool
	querySession string
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question over the knowledge base",
	Long: `Retrieves the most relevant chunks, generates a grounded answer and
prints it with its citations and a confidence score. With --session the
conversation is persisted and prior turns inform follow-up questions.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryStream, "stream", false, "stream the answer token by token")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	queryCmd.Flags().StringVar(&querySession, "session", "", "conversation id for follow-up context")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := cmd.Context()

	topK := queryTopK
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}

	var session *services.Session
	var history []domain.ChatMessage
	if querySession != "" {
		var err error
		session, err = services.NewSession(ctx, historyStore, querySession, question)
		if err != nil {
			return err
		}
		history = session.History()
	}

	if queryStream {
		return streamAnswer(cmd, question, topK, history, session)
	}

	result, err := queryService.Query(ctx, question, topK, history)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if session != nil {
		if err := recordTurn(cmd, session, question, result.Answer, result.Sources); err != nil {
			return err
		}
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Answer)
	printSources(cmd, result.Sources, result.Confidence)
	return nil
}

func streamAnswer(cmd *cobra.Command, question string, topK int, history []domain.ChatMessage, session *services.Session) error {
	ctx := cmd.Context()

	meta, events, err := queryService.StreamQuery(ctx, question, topK, history)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	// Citations render before the first token arrives.
	printSources(cmd, meta.Sources, meta.Confidence)

	var answer string
	for ev := range events {
		if ev.Err != nil {
			cmd.Println()
			return ev.Err
		}
		cmd.Print(ev.Token)
		answer += ev.Token
	}
	cmd.Println()

	if session != nil {
		return recordTurn(cmd, session, question, answer, meta.Sources)
	}
	return nil
}

func recordTurn(cmd *cobra.Command, session *services.Session, question, answer string, sources []domain.Source) error {
	ctx := cmd.Context()
	if err := session.AddUserMessage(ctx, question); err != nil {
		return err
	}
	return session.AddAssistantMessage(ctx, answer, sources)
}

func printSources(cmd *cobra.Command, sources []domain.Source, confidence float64) {
	if len(sources) == 0 {
		return
	}
	cmd.Printf("Confidence: %.2f%%\n", confidence)
	cmd.Println("Sources:")
	for _, s := range sources {
		line := fmt.Sprintf("  - %s (%s)", s.SourceFile, s.SourceType)
		if s.PageNumber != nil {
			line += fmt.Sprintf(", page %d", *s.PageNumber)
		}
		if s.Timestamp != nil {
			line += fmt.Sprintf(", %.1fs", *s.Timestamp)
		}
		cmd.Println(line)
	}
	cmd.Println()
}
