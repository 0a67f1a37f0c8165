package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repotree/internal/adapters/driving/printer"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 20, "number of runs to show, 0 for all")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if deps.Runs == nil {
		return errors.New("run history not configured")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := deps.Runs.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printer.PrintRuns(cmd.OutOrStdout(), runs)
}
