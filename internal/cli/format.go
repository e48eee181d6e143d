// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
)

// FormatMoney formats a dollar amount with cents.
// e.g., 12.5 -> "$12.50", -3 -> "-$3.00"
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg())
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents == 100 {
		whole = whole.Add(decimal.NewFromInt(1))
		cents = 0
	}
	return fmt.Sprintf("$%s.%02d", FormatNumber(whole.IntPart()), cents)
}

// FormatSignedMoney prefixes gains with "+".
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDate renders a day like "Sat Jun 15".
func FormatDate(d model.Date) string {
	return d.Time().Format("Mon Jan 2")
}

// FormatRelativeDate names today and yesterday, falling back to FormatDate.
func FormatRelativeDate(d, today model.Date) string {
	switch d {
	case today:
		return "Today"
	case today.AddDays(-1):
		return "Yesterday"
	}
	return FormatDate(d)
}

// FormatOutcome is the short label for a logged day.
func FormatOutcome(exercised bool) string {
	if exercised {
		return "💪 Exercised"
	}
	return "😴 Rest"
}

// StreakTier grades a streak for escalating display intensity.
type StreakTier int

// Streak tiers.
const (
	TierNone StreakTier = iota
	TierSpark
	TierFire
	TierBlaze
	TierInferno
	TierLegendary
)

// TierFor returns the tier of a streak length.
func TierFor(streak int) StreakTier {
	switch {
	case streak <= 0:
		return TierNone
	case streak <= 2:
		return TierSpark
	case streak <= 6:
		return TierFire
	case streak <= 13:
		return TierBlaze
	case streak <= 29:
		return TierInferno
	default:
		return TierLegendary
	}
}

// Emoji is the flame decoration for the tier.
func (t StreakTier) Emoji() string {
	switch t {
	case TierSpark:
		return "🔥"
	case TierFire:
		return "🔥🔥"
	case TierBlaze:
		return "🔥🔥🔥"
	case TierInferno:
		return "💥🔥💥"
	case TierLegendary:
		return "👑🔥👑"
	default:
		return ""
	}
}

// FormatStreak renders "5 days 🔥🔥".
func FormatStreak(streak int) string {
	unit := "days"
	if streak == 1 {
		unit = "day"
	}
	s := fmt.Sprintf("%d %s", streak, unit)
	if e := TierFor(streak).Emoji(); e != "" {
		s += " " + e
	}
	return s
}
