package cli

import (
	"fmt"
	"strings"

	"github.com/stephencockerill/oink/internal/bank"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/stats"
)

// RenderStatus renders the home screen summary.
func RenderStatus(s bank.Snapshot) string {
	var b strings.Builder

	b.WriteString(RenderTitle("🐷  OINK"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Balance"), pigStyle.Render(FormatMoney(s.ActualBalance)))
	fmt.Fprintf(&b, "  %s   %s\n", mutedStyle.Render("Streak"), flameStyle.Render(FormatStreak(s.Streak)))
	fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Freezes"), iceStyle.Render(RenderFreezeIcons(s.AvailableFreezes, s.MaxFreezes)))
	b.WriteString("\n")

	switch {
	case s.TodayLogged && s.TodayExercised:
		b.WriteString("  " + gainStyle.Render("💪 Today is logged. Nice work!") + "\n")
	case s.TodayLogged:
		b.WriteString("  " + mutedStyle.Render("😴 Today is logged as a rest day.") + "\n")
	default:
		b.WriteString("  " + warnStyle.Render("Did you exercise today?") + "\n")
		fmt.Fprintf(&b, "    %s  %s\n",
			gainStyle.Render("yes -> "+FormatMoney(s.ExercisePreview)),
			lossStyle.Render("no -> "+FormatMoney(s.MissPreview)))
	}

	if s.MissedDayForFreeze != nil && s.AvailableFreezes > 0 {
		fmt.Fprintf(&b, "  %s\n", iceStyle.Render(fmt.Sprintf(
			"🧊 %s can be frozen for %s (oink freeze use)",
			FormatRelativeDate(*s.MissedDayForFreeze, s.Today), FormatMoney(s.FreezeCost))))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf(
		"%s per workout · %s workouts · %d rewards",
		FormatMoney(s.RewardRate), FormatNumber(int64(s.TotalWorkouts)), s.RewardCount)))
	return b.String()
}

// RenderFreezeIcons shows held freezes as ice cubes and empty slots as dots.
func RenderFreezeIcons(available, max int) string {
	if max <= 0 {
		return ""
	}
	if available > max {
		available = max
	}
	if available < 0 {
		available = 0
	}
	return strings.Repeat("🧊", available) + strings.Repeat("·", max-available) +
		fmt.Sprintf(" %d/%d", available, max)
}

// RenderBreakdown renders the components of the actual balance.
func RenderBreakdown(s bank.Snapshot) string {
	return RenderTable(Table{
		Title:   "Balance",
		Headers: []string{"Component", "Amount"},
		Rows: [][]string{
			{"Ledger", FormatMoney(s.LedgerBalance)},
			{"Cash-outs", FormatSignedMoney(s.Deductions.Neg())},
			{"Freezes", FormatSignedMoney(s.FreezeSpending.Neg())},
			{"---"},
			{"Actual", FormatMoney(s.ActualBalance)},
		},
	})
}

// RenderHistory renders one row per day, most recent first.
func RenderHistory(days []stats.Day, today model.Date) string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		outcome := dimStyle.Render("-")
		switch {
		case d.Frozen:
			outcome = "🧊 Frozen"
		case d.Logged:
			outcome = FormatOutcome(d.Exercised)
		}
		rows = append(rows, []string{FormatRelativeDate(d.Date, today), outcome, FormatMoney(d.Balance)})
	}
	return RenderTable(Table{
		Title:   "History",
		Headers: []string{"Day", "Outcome", "Balance"},
		Rows:    rows,
	})
}

// RenderWeeks renders weekly rollups with a balance sparkline.
func RenderWeeks(weeks []stats.Week) string {
	rows := make([][]string, 0, len(weeks))
	balances := make([]float64, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, []string{
			"Week of " + FormatDate(w.Start),
			fmt.Sprintf("%d", w.Workouts),
			fmt.Sprintf("%d", w.Misses),
			fmt.Sprintf("%d", w.Frozen),
			FormatMoney(w.EndBalance),
		})
		f, _ := w.EndBalance.Float64()
		balances = append(balances, f)
	}
	out := RenderTable(Table{
		Title:   "Weekly",
		Headers: []string{"Week", "Workouts", "Misses", "Frozen", "Balance"},
		Rows:    rows,
	})
	if len(balances) > 1 {
		out += "  " + pigStyle.Render(RenderSparkline(balances)) + "\n"
	}
	return out
}

// RenderSummary renders lifetime statistics.
func RenderSummary(s stats.Summary) string {
	if s.TotalDays == 0 {
		return mutedStyle.Render("  No days logged yet.") + "\n"
	}
	return RenderTable(Table{
		Title:   "Stats",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Days logged", FormatNumber(int64(s.TotalDays))},
			{"Workouts", FormatNumber(int64(s.Workouts))},
			{"Rest days", FormatNumber(int64(s.Misses))},
			{"Frozen days", FormatNumber(int64(s.FrozenDays))},
			{"Completion", FormatPercent(s.CompletionRate)},
			{"Longest streak", FormatStreak(s.LongestStreak)},
			{"Peak balance", FormatMoney(s.PeakBalance) + " (" + FormatDate(s.PeakDate) + ")"},
		},
	})
}

// RenderCashOuts renders the reward history, newest first.
func RenderCashOuts(ds []model.Deduction) string {
	if len(ds) == 0 {
		return mutedStyle.Render("  No rewards yet. Keep feeding the pig!") + "\n"
	}
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, []string{
			shortID(d.ID),
			d.Emoji + " " + d.Label,
			FormatMoney(d.Amount),
			fmt.Sprintf("%d", d.WorkoutsRepresented()),
			d.CreatedAt.Local().Format("2006-01-02"),
		})
	}
	return RenderTable(Table{
		Title:   "Rewards",
		Headers: []string{"ID", "Reward", "Amount", "Workouts", "Date"},
		Rows:    rows,
	})
}

// RenderFreezes renders the freeze inventory.
func RenderFreezes(s bank.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Available"), iceStyle.Render(RenderFreezeIcons(s.AvailableFreezes, s.MaxFreezes)))
	fmt.Fprintf(&b, "  %s       %s\n", mutedStyle.Render("Cost"), valueStyle.Render(FormatMoney(s.FreezeCost)))
	fmt.Fprintf(&b, "  %s      %s\n", mutedStyle.Render("Spent"), lossStyle.Render(FormatMoney(s.FreezeSpending)))
	if len(s.FrozenDates) > 0 {
		dates := make([]string, 0, len(s.FrozenDates))
		for _, d := range s.FrozenDates {
			dates = append(dates, d.String())
		}
		fmt.Fprintf(&b, "  %s     %s\n", mutedStyle.Render("Frozen"), dimStyle.Render(strings.Join(dates, ", ")))
	}
	if s.MissedDayForFreeze != nil {
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render("Freezable"), warnStyle.Render(s.MissedDayForFreeze.String()))
	}
	return b.String()
}

// shortID trims a uuid to its first block; commands accept any unique prefix.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
