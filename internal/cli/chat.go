package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"travelchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive travel planner",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, sink, err := newChatService(ctx, cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	logger.Info("chat session started", "collections", len(svc.Collections()))
	if _, err := tea.NewProgram(tui.New(ctx, svc), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
