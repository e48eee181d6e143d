package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/stephencockerill/oink/internal/tui/theme"
)

// ProgressBar renders a block bar with a percentage, clamped to [0, 1].
func ProgressBar(pct float64, width int, color lipgloss.Color) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String() + " " + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// FreezeMeter renders the freeze inventory as a bar with an "n/max" label.
func FreezeMeter(available, max, barWidth int) string {
	t := theme.Active
	if max <= 0 {
		return ""
	}
	pct := clamp01(float64(available) / float64(max))

	bar := progress.New(
		progress.WithSolidFill(string(t.Ice)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	countStyle := lipgloss.NewStyle().Foreground(t.Ice).Bold(true)
	return bar.ViewAs(pct) + " " + countStyle.Render(fmt.Sprintf("%d/%d", available, max))
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
