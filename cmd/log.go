package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
)

var flagRest bool

var logCmd = &cobra.Command{
	Use:   "log [date]",
	Short: "Log a workout (or --rest) for today or a past day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLog,
}

var bulkCmd = &cobra.Command{
	Use:   "bulk DATE...",
	Short: "Log the same outcome for several days (supports A..B ranges)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBulk,
}

func init() {
	logCmd.Flags().BoolVar(&flagRest, "rest", false, "Log a rest day instead of a workout")
	bulkCmd.Flags().BoolVar(&flagRest, "rest", false, "Log rest days instead of workouts")
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(bulkCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		day, err := parseDay(arg, s.bank.Today())
		if err != nil {
			return err
		}

		entry, err := s.bank.RecordOutcome(ctx, day, !flagRest)
		if err != nil {
			return err
		}
		summary, err := s.bank.Summary(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("  %s  %s\n", cli.FormatRelativeDate(entry.Date, s.bank.Today()), cli.FormatOutcome(entry.Exercised))
		fmt.Printf("  Balance: %s   Streak: %s\n", cli.FormatMoney(summary.ActualBalance), cli.FormatStreak(summary.Streak))
		return nil
	})
}

func runBulk(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		days, err := parseDays(args, s.bank.Today())
		if err != nil {
			return err
		}
		n, err := s.bank.BulkRecord(ctx, days, !flagRest)
		if err != nil {
			return err
		}
		summary, err := s.bank.Summary(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("  Logged %d days as %s\n", n, cli.FormatOutcome(!flagRest))
		fmt.Printf("  Balance: %s   Streak: %s\n", cli.FormatMoney(summary.ActualBalance), cli.FormatStreak(summary.Streak))
		return nil
	})
}
