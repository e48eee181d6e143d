package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
)

var (
	flagEmoji  string
	flagLabel  string
	flagAmount string
)

var rewardsCmd = &cobra.Command{
	Use:     "rewards",
	Aliases: []string{"cashouts"},
	Short:   "List cash-outs, newest first",
	RunE:    runRewards,
}

var cashOutCmd = &cobra.Command{
	Use:   "cashout LABEL AMOUNT",
	Short: "Spend part of the balance on a reward",
	Args:  cobra.ExactArgs(2),
	RunE:  runCashOut,
}

var rewardsEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a cash-out's label, amount or emoji",
	Args:  cobra.ExactArgs(1),
	RunE:  runRewardsEdit,
}

var rewardsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a cash-out, returning its amount to the balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runRewardsDelete,
}

func init() {
	cashOutCmd.Flags().StringVarP(&flagEmoji, "emoji", "e", "", "Emoji shown next to the reward")

	rewardsEditCmd.Flags().StringVarP(&flagLabel, "label", "l", "", "New label")
	rewardsEditCmd.Flags().StringVarP(&flagAmount, "amount", "a", "", "New amount")
	rewardsEditCmd.Flags().StringVarP(&flagEmoji, "emoji", "e", "", "New emoji")

	rewardsCmd.AddCommand(rewardsEditCmd)
	rewardsCmd.AddCommand(rewardsDeleteCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(cashOutCmd)
}

func runRewards(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ds, err := s.bank.CashOuts(ctx)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderCashOuts(ds))
		if len(ds) > 0 {
			total := decimal.Zero
			for _, d := range ds {
				total = total.Add(d.Amount)
			}
			fmt.Printf("  Total cashed out: %s\n", cli.FormatMoney(total))
		}
		return nil
	})
}

func runCashOut(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		d, err := s.bank.CashOut(ctx, args[0], amount, flagEmoji)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %s  %s  (%d workouts)\n", d.Emoji, d.Label, cli.FormatMoney(d.Amount), d.WorkoutsRepresented())
		fmt.Printf("  Balance: %s -> %s\n", cli.FormatMoney(d.BalanceBefore), cli.FormatMoney(d.BalanceAfter))
		return nil
	})
}

func runRewardsEdit(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		id, err := resolveCashOutID(ctx, s, args[0])
		if err != nil {
			return err
		}
		old, err := s.bank.GetCashOut(ctx, id)
		if err != nil {
			return err
		}

		label := old.Label
		if flagLabel != "" {
			label = flagLabel
		}
		amount := old.Amount
		if flagAmount != "" {
			if amount, err = parseAmount(flagAmount); err != nil {
				return err
			}
		}

		d, err := s.bank.UpdateCashOut(ctx, id, label, amount, flagEmoji)
		if err != nil {
			return err
		}
		fmt.Printf("  Updated %s %s  %s\n", d.Emoji, d.Label, cli.FormatMoney(d.Amount))
		return nil
	})
}

func runRewardsDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		id, err := resolveCashOutID(ctx, s, args[0])
		if err != nil {
			return err
		}
		if err := s.bank.DeleteCashOut(ctx, id); err != nil {
			return err
		}
		summary, err := s.bank.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted. Balance: %s\n", cli.FormatMoney(summary.ActualBalance))
		return nil
	})
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := money.Parse(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, model.Invalid(model.CodeNonPositiveAmount, "invalid amount %q", s)
	}
	return amount, nil
}

// resolveCashOutID accepts a full id or any unique prefix of one.
func resolveCashOutID(ctx context.Context, s *session, prefix string) (string, error) {
	ds, err := s.bank.CashOuts(ctx)
	if err != nil {
		return "", err
	}
	return matchID(ds, prefix)
}

func matchID(ds []model.Deduction, prefix string) (string, error) {
	var found []string
	for _, d := range ds {
		if d.ID == prefix {
			return d.ID, nil
		}
		if strings.HasPrefix(d.ID, prefix) {
			found = append(found, d.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("cash-out %s: %w", prefix, model.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("cash-out id %q is ambiguous (%d matches)", prefix, len(found))
	}
}
