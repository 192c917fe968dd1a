package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"travelchat/internal/chatlog"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the chat log",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	sink, err := chatlog.Open(cfg.ChatLog.Type, cfg.ChatLog.Path)
	if err != nil {
		return err
	}
	defer sink.Close()

	text, err := sink.ReadAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("read chat log: %w", err)
	}
	if text == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No chat log entries yet.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
