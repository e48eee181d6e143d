package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every ledger balance from scratch at the current rate",
	Args:  cobra.NoArgs,
	RunE:  runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		n, err := s.bank.Rebuild(ctx)
		if err != nil {
			return err
		}
		summary, err := s.bank.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  Rebuilt ledger: %d entries rewritten\n", n)
		fmt.Printf("  Balance: %s\n", cli.FormatMoney(summary.ActualBalance))
		return nil
	})
}
