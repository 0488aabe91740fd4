package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

// NewWorkerCommand creates the hidden subcommand spawned by process mode.
// It reads a JSON batch from stdin and writes the JSON partial result to
// stdout.
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "worker",
		Short:  "Process one counting batch from stdin (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tally.RunWorker(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
