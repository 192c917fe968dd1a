// Package main provides the entry point for the travelchat CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"travelchat/internal/cli"
	"travelchat/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrMissingAPIKey) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
