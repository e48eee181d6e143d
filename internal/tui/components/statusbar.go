package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stephencockerill/oink/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints left, status right.
// A non-empty flash replaces the hints and is shown in the warn colour
// when isErr is set.
func RenderStatusBar(width int, hints, status, flash string, isErr bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " " + hints
	if flash != "" {
		color := t.Money
		if isErr {
			color = t.Warn
		}
		left = " " + lipgloss.NewStyle().Foreground(color).Render(flash)
	}
	right := status + " "

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
