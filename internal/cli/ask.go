package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the reply",
	Long: `Run a single turn against the configured collections and print the reply.

Examples:
  travelchat ask "What are the best beaches near Fajardo?"
  travelchat ask "Tell me about El Morro"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, sink, err := newChatService(ctx, cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	reply := svc.Send(ctx, strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
