// Package cli provides the command-line interface for travelchat.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"travelchat/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	cfgPath string
	verbose bool

	cfg         *config.AppConfig
	logger      *slog.Logger
	closeLogger = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "travelchat",
	Short: "Puerto Rico travel planning assistant",
	Long: `Travelchat answers travel questions about Puerto Rico, grounding the
answers in indexed municipality, landmark and news collections.

Run without a subcommand to start the interactive chat.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		_ = godotenv.Load()

		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := config.ParseLogLevel(cfg.Logging.Level)
		if verbose {
			level = slog.LevelDebug
		}
		// The TUI owns the terminal, so it logs to the file only.
		if !cmd.HasParent() || cmd.Name() == "chat" {
			logger, closeLogger = config.SetupFileLogger(cfg.Logging.File, level)
		} else {
			logger, closeLogger = config.SetupLogger(cfg.Logging.File, level)
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := closeLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	},
	RunE: runChat,
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default ./config.yaml, then ~/.config/travelchat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(logsCmd)
}
