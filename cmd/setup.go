package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	vals := tui.SetupValuesFrom(cfg)

	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled. Nothing saved.")
			return nil
		}
		return err
	}

	rate, err := vals.Apply(&cfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	appConfig = cfg

	err = withSession(cmd, func(ctx context.Context, s *session) error {
		return s.bank.SetRewardRate(ctx, rate)
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `oink setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
