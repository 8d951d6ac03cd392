package cli

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage stored conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a conversation's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	conversations, err := historyStore.ListConversations(cmd.Context())
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		cmd.Println("No conversations.")
		return nil
	}
	for _, c := range conversations {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("%s  %s  %s\n", c.ID, c.CreatedAt.Format("2006-01-02 15:04"), title)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	conv, err := historyStore.GetConversation(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, msg := range conv.Messages {
		cmd.Printf("[%s] %s\n", msg.Role, msg.Content)
		for _, s := range msg.Sources {
			cmd.Printf("    source: %s\n", s.SourceFile)
		}
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if err := historyStore.DeleteConversation(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Println("Deleted.")
	return nil
}
