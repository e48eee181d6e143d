package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show balance, streak and freezes",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the snapshot as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		snap, err := s.bank.Refresh(ctx)
		if err != nil {
			return err
		}
		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		fmt.Println(cli.RenderStatus(snap))
		return nil
	})
}
