package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Force TrueColor so themed styles always render; SetActive already
	// downgraded the palette for ANSI-only terminals.
	lipgloss.SetColorProfile(termenv.TrueColor)

	return withSession(cmd, func(_ context.Context, s *session) error {
		app := tui.NewApp(s.bank, s.cfg, !config.Exists())
		defer app.Close()

		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}
