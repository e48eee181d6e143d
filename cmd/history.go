package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/stats"
)

var (
	flagHistoryDays int
	flagWeekly      bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent days and their balances",
	RunE:  runHistory,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime statistics and the balance breakdown",
	RunE:  runStats,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryDays, "days", "n", 14, "Number of days to show")
	historyCmd.Flags().BoolVarP(&flagWeekly, "weekly", "w", false, "Group by week")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		h, err := s.bank.History(ctx)
		if err != nil {
			return err
		}
		if len(h.Entries) == 0 {
			fmt.Println("  No days logged yet. Try `oink log`.")
			return nil
		}

		if flagWeekly {
			fmt.Print(cli.RenderWeeks(stats.Weekly(h.Entries, h.Frozen)))
			return nil
		}
		today := s.bank.Today()
		since, until := stats.Range(today, flagHistoryDays)
		fmt.Print(cli.RenderHistory(stats.Daily(h.Entries, h.Frozen, since, until), today))
		return nil
	})
}

func runStats(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		h, err := s.bank.History(ctx)
		if err != nil {
			return err
		}
		snap, err := s.bank.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderSummary(stats.Summarize(h.Entries, h.Frozen)))
		fmt.Println()
		fmt.Print(cli.RenderBreakdown(snap))
		return nil
	})
}
