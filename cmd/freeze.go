package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/model"
)

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Show streak freezes",
	RunE:  runFreeze,
}

var freezeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Acquire a streak freeze (free, up to the cap)",
	Args:  cobra.NoArgs,
	RunE:  runFreezeGet,
}

var freezeUseCmd = &cobra.Command{
	Use:   "use [date]",
	Short: "Spend a freeze to protect a missed day (defaults to the latest one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFreezeUse,
}

func init() {
	freezeCmd.AddCommand(freezeGetCmd)
	freezeCmd.AddCommand(freezeUseCmd)
	rootCmd.AddCommand(freezeCmd)
}

func runFreeze(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		snap, err := s.bank.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderFreezes(snap))
		return nil
	})
}

func runFreezeGet(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		n, err := s.bank.AcquireFreeze(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  🧊 Freeze acquired. You hold %s\n", cli.RenderFreezeIcons(n, s.bank.MaxFreezes()))
		return nil
	})
}

func runFreezeUse(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		var day model.Date
		if len(args) == 1 {
			d, err := parseDay(args[0], s.bank.Today())
			if err != nil {
				return err
			}
			day = d
		} else {
			snap, err := s.bank.Refresh(ctx)
			if err != nil {
				return err
			}
			if snap.MissedDayForFreeze == nil {
				fmt.Println("  No missed days in the last week. Nothing to freeze.")
				return nil
			}
			day = *snap.MissedDayForFreeze
		}

		cost, err := s.bank.UseFreeze(ctx, day)
		if err != nil {
			return err
		}
		summary, err := s.bank.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  🧊 Froze %s for %s\n", cli.FormatRelativeDate(day, s.bank.Today()), cli.FormatMoney(cost))
		fmt.Printf("  Balance: %s   Streak: %s\n", cli.FormatMoney(summary.ActualBalance), cli.FormatStreak(summary.Streak))
		return nil
	})
}
