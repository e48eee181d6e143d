// Package stats rolls the ledger up into daily, weekly and all-time views.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
)

// Day is one calendar day in the history view.
type Day struct {
	Date      model.Date      `json:"date"`
	Logged    bool            `json:"logged"`
	Exercised bool            `json:"exercised"`
	Frozen    bool            `json:"frozen"`
	Balance   decimal.Decimal `json:"balance"`
}

// Week rolls up the days starting on Monday.
type Week struct {
	Start      model.Date      `json:"start"`
	Workouts   int             `json:"workouts"`
	Misses     int             `json:"misses"`
	Frozen     int             `json:"frozen"`
	EndBalance decimal.Decimal `json:"end_balance"`
}

// Summary is the all-time rollup.
type Summary struct {
	FirstDay       model.Date      `json:"first_day"`
	LastDay        model.Date      `json:"last_day"`
	TotalDays      int             `json:"total_days"`
	Workouts       int             `json:"workouts"`
	Misses         int             `json:"misses"`
	FrozenDays     int             `json:"frozen_days"`
	CompletionRate float64         `json:"completion_rate"`
	LongestStreak  int             `json:"longest_streak"`
	PeakBalance    decimal.Decimal `json:"peak_balance"`
	PeakDate       model.Date      `json:"peak_date"`
}

// Daily returns one Day per calendar day in [since, until], most recent
// first. Unlogged days carry the balance of the nearest earlier entry.
func Daily(entries []model.LedgerEntry, frozen model.DateSet, since, until model.Date) []Day {
	if until.Before(since) {
		return nil
	}
	sorted := ascending(entries)

	balance := decimal.Zero
	i := 0
	for i < len(sorted) && sorted[i].Date.Before(since) {
		balance = sorted[i].BalanceAfter
		i++
	}

	days := make([]Day, 0, int(until-since)+1)
	for d := since; !d.After(until); d = d.AddDays(1) {
		day := Day{Date: d, Frozen: frozen.Has(d)}
		if i < len(sorted) && sorted[i].Date == d {
			day.Logged = true
			day.Exercised = sorted[i].Exercised
			balance = sorted[i].BalanceAfter
			i++
		}
		day.Balance = balance
		days = append(days, day)
	}

	// Most recent first
	for l, r := 0, len(days)-1; l < r; l, r = l+1, r-1 {
		days[l], days[r] = days[r], days[l]
	}
	return days
}

// Weekly groups logged and frozen days by ISO week, most recent first.
func Weekly(entries []model.LedgerEntry, frozen model.DateSet) []Week {
	weekMap := make(map[model.Date]*Week)
	get := func(d model.Date) *Week {
		start := WeekStart(d)
		w, ok := weekMap[start]
		if !ok {
			w = &Week{Start: start}
			weekMap[start] = w
		}
		return w
	}

	for _, en := range ascending(entries) {
		w := get(en.Date)
		switch {
		case en.Exercised:
			w.Workouts++
		case frozen.Has(en.Date):
			w.Frozen++
		default:
			w.Misses++
		}
		w.EndBalance = en.BalanceAfter
	}
	for d := range frozen {
		if !hasEntry(entries, d) {
			get(d).Frozen++
		}
	}

	weeks := make([]Week, 0, len(weekMap))
	for _, w := range weekMap {
		weeks = append(weeks, *w)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Start.After(weeks[j].Start)
	})
	return weeks
}

// WeekStart returns the Monday on or before d.
func WeekStart(d model.Date) model.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Summarize computes the all-time rollup. An empty ledger yields the zero
// Summary.
func Summarize(entries []model.LedgerEntry, frozen model.DateSet) Summary {
	sorted := ascending(entries)
	if len(sorted) == 0 {
		return Summary{}
	}

	s := Summary{
		FirstDay:      sorted[0].Date,
		LastDay:       sorted[len(sorted)-1].Date,
		TotalDays:     len(sorted),
		LongestStreak: LongestStreak(sorted, frozen),
	}
	for _, en := range sorted {
		if en.Exercised {
			s.Workouts++
		} else {
			s.Misses++
		}
		if en.BalanceAfter.GreaterThan(s.PeakBalance) {
			s.PeakBalance = en.BalanceAfter
			s.PeakDate = en.Date
		}
	}
	for d := range frozen {
		if !d.Before(s.FirstDay) && !d.After(s.LastDay) {
			s.FrozenDays++
		}
	}
	s.CompletionRate = float64(s.Workouts) / float64(s.TotalDays)
	return s
}

// LongestStreak is the longest run of exercised days anywhere in history,
// with frozen days bridging gaps the same way the current streak does.
func LongestStreak(entries []model.LedgerEntry, frozen model.DateSet) int {
	sorted := ascending(entries)
	if len(sorted) == 0 {
		return 0
	}

	best, run := 0, 0
	i := 0
	for d := sorted[0].Date; !d.After(sorted[len(sorted)-1].Date); d = d.AddDays(1) {
		logged := i < len(sorted) && sorted[i].Date == d
		exercised := logged && sorted[i].Exercised
		if logged {
			i++
		}
		switch {
		case exercised:
			run++
			best = max(best, run)
		case frozen.Has(d):
		default:
			run = 0
		}
	}
	return best
}

// Range returns the dates covering the last n days ending at today.
func Range(today model.Date, n int) (since, until model.Date) {
	if n < 1 {
		n = 1
	}
	return today.AddDays(-(n - 1)), today
}

func ascending(entries []model.LedgerEntry) []model.LedgerEntry {
	if sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date }) {
		return entries
	}
	out := make([]model.LedgerEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func hasEntry(entries []model.LedgerEntry, d model.Date) bool {
	for _, en := range entries {
		if en.Date == d {
			return true
		}
	}
	return false
}
