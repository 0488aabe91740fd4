// Package main provides the entry point for the locfang CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locfang/cmd/locfang/commands"
	"github.com/Sumatoshi-tech/locfang/pkg/version"
)

// exitCancelled is the exit code for a user-interrupted run.
const exitCancelled = 130

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewCountCommand()
	rootCmd.AddCommand(commands.NewWorkerCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Operation cancelled by user.")
			os.Exit(exitCancelled)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "locfang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
