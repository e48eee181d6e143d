// Package cmd implements the oink CLI commands.
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration and settings",
	RunE:  runConfig,
}

var configSetRateCmd = &cobra.Command{
	Use:   "set-rate AMOUNT",
	Short: "Set the reward per workout (applies to future recalculations)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetRate,
}

var configSetFreezesCmd = &cobra.Command{
	Use:   "set-freezes N",
	Short: "Override how many freezes you hold",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetFreezes,
}

func init() {
	configCmd.AddCommand(configSetRateCmd)
	configCmd.AddCommand(configSetFreezesCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:      %s\n", cfg.DBPath())
	fmt.Printf("    Initial rate:  %s\n", cli.FormatMoney(cfg.RewardRate()))
	fmt.Println()

	fmt.Println("  [Reminders]")
	if cfg.Reminders.Enabled {
		fmt.Printf("    Daily at %02d:%02d (while `oink daemon` runs)\n", cfg.Reminders.Hour, cfg.Reminders.Minute)
	} else {
		fmt.Println("    Disabled")
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: http://%s\n", cfg.Daemon.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	err := withSession(cmd, func(ctx context.Context, s *session) error {
		st, err := s.bank.Settings(ctx)
		if err != nil {
			return err
		}
		fmt.Println("  [Settings]")
		fmt.Printf("    Reward rate:     %s per workout\n", cli.FormatMoney(st.RewardRate))
		fmt.Printf("    Freezes:         %s\n", cli.RenderFreezeIcons(st.AvailableFreezes, s.bank.MaxFreezes()))
		fmt.Printf("    Frozen days:     %d\n", len(st.FrozenDates))
		fmt.Printf("    Freeze spending: %s\n", cli.FormatMoney(st.TotalFreezeSpending))
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("  Run `oink setup` to reconfigure.")
	return nil
}

func runConfigSetRate(cmd *cobra.Command, args []string) error {
	rate, err := parseAmount(args[0])
	if err != nil {
		return model.Invalid(model.CodeInvalidRate, "invalid reward rate %q", args[0])
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.bank.SetRewardRate(ctx, rate); err != nil {
			return err
		}
		st, err := s.bank.Settings(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  Reward rate: %s per workout\n", cli.FormatMoney(st.RewardRate))
		fmt.Println("  Existing balances keep their history until the next change or `oink rebuild`.")
		return nil
	})
}

func runConfigSetFreezes(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return model.Invalid(model.CodeInvalidFreezeCount, "invalid freeze count %q", args[0])
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.bank.SetAvailableFreezes(ctx, n); err != nil {
			return err
		}
		fmt.Printf("  Freezes: %s\n", cli.RenderFreezeIcons(n, s.bank.MaxFreezes()))
		return nil
	})
}
