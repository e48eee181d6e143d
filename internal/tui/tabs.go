package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/tui/components"
	"github.com/stephencockerill/oink/internal/tui/theme"
)

func (a App) renderPiggyTab(cw int) string {
	t := theme.Active
	s := a.snap

	streakNote := cli.TierFor(s.Streak).Emoji()
	if a.summary.LongestStreak > 0 {
		streakNote = strings.TrimSpace(streakNote + fmt.Sprintf(" best %d", a.summary.LongestStreak))
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(s.ActualBalance), Note: cli.FormatMoney(s.RewardRate) + " per workout", Color: t.Pig},
		{Label: "Streak", Value: cli.FormatStreak(s.Streak), Note: streakNote, Color: t.Flame},
		{Label: "Freezes", Value: fmt.Sprintf("%d/%d", s.AvailableFreezes, s.MaxFreezes), Note: "cost " + cli.FormatMoney(s.FreezeCost), Color: t.Ice},
	}, cw))
	b.WriteString("\n")

	gain := lipgloss.NewStyle().Foreground(t.Money).Bold(true)
	loss := lipgloss.NewStyle().Foreground(t.Loss).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	ice := lipgloss.NewStyle().Foreground(t.Ice)

	var today strings.Builder
	switch {
	case s.TodayLogged && s.TodayExercised:
		today.WriteString(gain.Render("💪 Logged. The pig is happy."))
	case s.TodayLogged:
		today.WriteString(muted.Render("😴 Logged as a rest day. ") + gain.Render("[e]") + muted.Render(" if you squeezed one in after all."))
	default:
		today.WriteString("Did you exercise today?\n\n")
		today.WriteString(gain.Render("[e] yes") + muted.Render(" -> "+cli.FormatMoney(s.ExercisePreview)) + "    ")
		today.WriteString(loss.Render("[n] no") + muted.Render(" -> "+cli.FormatMoney(s.MissPreview)))
	}
	if s.MissedDayForFreeze != nil && s.AvailableFreezes > 0 {
		today.WriteString("\n\n")
		today.WriteString(ice.Render(fmt.Sprintf("🧊 %s broke the streak. [u] freezes it for %s",
			cli.FormatRelativeDate(*s.MissedDayForFreeze, s.Today), cli.FormatMoney(s.FreezeCost))))
	}
	b.WriteString(components.ContentCard("Today", today.String(), cw))
	b.WriteString("\n")

	if len(a.days) > 0 {
		body := components.DayStrip(a.days) + "\n" +
			components.Sparkline(components.BalanceSeries(a.days), t.Pig)
		b.WriteString(components.ContentCard(fmt.Sprintf("Last %d days", len(a.days)), body, cw))
	}
	return b.String()
}

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	sum := a.summary

	var b strings.Builder
	if sum.TotalDays > 0 {
		b.WriteString(components.MetricCardRow([]components.Metric{
			{Label: "Workouts", Value: cli.FormatNumber(int64(sum.Workouts)), Note: cli.FormatPercent(sum.CompletionRate) + " of days", Color: t.Money},
			{Label: "Longest streak", Value: cli.FormatStreak(sum.LongestStreak), Color: t.Flame},
			{Label: "Peak balance", Value: cli.FormatMoney(sum.PeakBalance), Note: cli.FormatDate(sum.PeakDate), Color: t.Pig},
		}, cw))
		b.WriteString("\n")
	}

	inner := components.CardInnerWidth(cw)
	var rows strings.Builder
	if len(a.days) == 0 {
		rows.WriteString(muted.Render("Nothing logged yet."))
	}
	for i, d := range a.days {
		outcome := muted.Render("not logged")
		switch {
		case d.Frozen:
			outcome = lipgloss.NewStyle().Foreground(t.Ice).Render("🧊 Frozen")
		case d.Logged:
			outcome = cli.FormatOutcome(d.Exercised)
		}
		label := cli.FormatRelativeDate(d.Date, a.snap.Today)
		bal := cli.FormatMoney(d.Balance)
		gap := inner - 12 - lipgloss.Width(outcome) - lipgloss.Width(bal)
		if gap < 1 {
			gap = 1
		}
		fmt.Fprintf(&rows, "%-12s%s%s%s", label, outcome, strings.Repeat(" ", gap), bal)
		if i < len(a.days)-1 {
			rows.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Daily", rows.String(), cw))
	return b.String()
}

func (a App) renderRewardsTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	loss := lipgloss.NewStyle().Foreground(t.Loss)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Cashed out", Value: cli.FormatMoney(a.snap.Deductions), Color: t.Loss},
		{Label: "Rewards", Value: cli.FormatNumber(int64(a.snap.RewardCount))},
		{Label: "Workouts rewarded", Value: cli.FormatNumber(int64(a.snap.WorkoutsRewarded)), Color: t.Money},
	}, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	var rows strings.Builder
	if len(a.cashOuts) == 0 {
		rows.WriteString(muted.Render("No rewards yet. Cash out with `oink cashout LABEL AMOUNT`."))
	}
	for i, d := range a.cashOuts {
		left := d.Emoji + " " + d.Label
		right := loss.Render("-"+cli.FormatMoney(d.Amount)) + muted.Render(fmt.Sprintf("  %s  %d workouts",
			d.CreatedAt.Local().Format("Jan 2"), d.WorkoutsRepresented()))
		gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
		if gap < 1 {
			gap = 1
		}
		rows.WriteString(left + strings.Repeat(" ", gap) + right)
		if i < len(a.cashOuts)-1 {
			rows.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Cash-outs", rows.String(), cw))
	return b.String()
}

func (a App) renderFreezesTab(cw int) string {
	t := theme.Active
	s := a.snap
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	ice := lipgloss.NewStyle().Foreground(t.Ice)

	var body strings.Builder
	body.WriteString(components.FreezeMeter(s.AvailableFreezes, s.MaxFreezes, 24))
	body.WriteString("\n\n")
	fmt.Fprintf(&body, "%s %s\n", muted.Render("Cost per use:"), cli.FormatMoney(s.FreezeCost))
	fmt.Fprintf(&body, "%s %s\n", muted.Render("Total spent: "), cli.FormatMoney(s.FreezeSpending))

	switch {
	case s.MissedDayForFreeze == nil:
		body.WriteString("\n" + muted.Render("No missed days in the last week."))
	case s.AvailableFreezes == 0:
		body.WriteString("\n" + muted.Render(fmt.Sprintf("%s could be frozen, but you have no freezes. [g] gets one.",
			cli.FormatRelativeDate(*s.MissedDayForFreeze, s.Today))))
	default:
		body.WriteString("\n" + ice.Render(fmt.Sprintf("[u] freeze %s", cli.FormatRelativeDate(*s.MissedDayForFreeze, s.Today))))
	}
	if s.AvailableFreezes < s.MaxFreezes {
		body.WriteString("\n" + muted.Render("[g] get a freeze (free)"))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Streak freezes", body.String(), cw))
	if len(s.FrozenDates) > 0 {
		dates := make([]string, 0, len(s.FrozenDates))
		for i := len(s.FrozenDates) - 1; i >= 0; i-- {
			dates = append(dates, cli.FormatDate(s.FrozenDates[i]))
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Frozen days", ice.Render(strings.Join(dates, "\n")), cw))
	}
	return b.String()
}
