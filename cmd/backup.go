package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/backup"
	"github.com/stephencockerill/oink/internal/cli"
)

var (
	flagImportForce   bool
	flagImportRebuild bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the whole ledger to a JSONL backup (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the database with the contents of a JSONL backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportForce, "force", false, "overwrite a database that already has entries")
	importCmd.Flags().BoolVar(&flagImportRebuild, "rebuild", false, "recompute balances at the imported reward rate")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		archive, err := s.bank.Export(ctx)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if len(args) == 1 {
			f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("creating backup: %w", err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}

		if err := backup.Write(w, archive, time.Now()); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "  Exported %d entries, %d rewards, %d frozen days to %s\n",
				len(archive.Entries), len(archive.Deductions), len(archive.Frozen), args[0])
		}
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer func() { _ = f.Close() }()

	res := backup.Read(f)
	if res.Err != nil {
		return fmt.Errorf("reading %s: %w", args[0], res.Err)
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		if res.ParseErrors > 0 {
			s.log.Warn().Int("lines", res.ParseErrors).Msg("skipped malformed backup lines")
		}

		current, err := s.bank.History(ctx)
		if err != nil {
			return err
		}
		if len(current.Entries) > 0 && !flagImportForce {
			return fmt.Errorf("database already has %d entries, pass --force to replace them", len(current.Entries))
		}

		n, err := s.bank.Import(ctx, res.Archive, flagImportRebuild)
		if err != nil {
			return err
		}
		summary, err := s.bank.Summary(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("  Imported %d entries, %d rewards, %d frozen days\n",
			len(res.Archive.Entries), len(res.Archive.Deductions), len(res.Archive.Frozen))
		if flagImportRebuild {
			fmt.Printf("  Rebuilt ledger: %d entries rewritten\n", n)
		}
		fmt.Printf("  Balance: %s\n", cli.FormatMoney(summary.ActualBalance))
		return nil
	})
}
