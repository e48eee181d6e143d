package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stephencockerill/oink/internal/stats"
	"github.com/stephencockerill/oink/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// DayStrip renders one cell per day, oldest on the left: a filled block for
// a workout, a hollow one for a rest day, a snowflake for a frozen day and
// a dot when nothing was logged. days is most recent first.
func DayStrip(days []stats.Day) string {
	t := theme.Active
	workout := lipgloss.NewStyle().Foreground(t.Money)
	rest := lipgloss.NewStyle().Foreground(t.Loss)
	frozen := lipgloss.NewStyle().Foreground(t.Ice)
	empty := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		switch {
		case d.Frozen:
			b.WriteString(frozen.Render("*"))
		case !d.Logged:
			b.WriteString(empty.Render("·"))
		case d.Exercised:
			b.WriteString(workout.Render("■"))
		default:
			b.WriteString(rest.Render("□"))
		}
	}
	return b.String()
}

// BalanceSeries returns the day balances oldest first, for Sparkline.
func BalanceSeries(days []stats.Day) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		f, _ := d.Balance.Float64()
		out[len(days)-1-i] = f
	}
	return out
}
