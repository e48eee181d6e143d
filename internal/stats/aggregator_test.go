package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/model"
)

// 2024-06-10 is a Monday.
var monday = model.NewDate(2024, time.June, 10)

func entry(off int, exercised bool, bal string) model.LedgerEntry {
	return model.LedgerEntry{
		Date:         monday.AddDays(off),
		Exercised:    exercised,
		BalanceAfter: decimal.RequireFromString(bal),
	}
}

func TestDailyFillsGaps(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(0, true, "5.00"),
		entry(2, false, "2.50"),
		entry(-3, true, "1.00"),
	}
	frozen := model.NewDateSet(monday.AddDays(1))

	days := Daily(entries, frozen, monday, monday.AddDays(3))
	require.Len(t, days, 4)

	assert.Equal(t, monday.AddDays(3), days[0].Date, "most recent first")
	assert.False(t, days[0].Logged)
	assert.Equal(t, "2.50", days[0].Balance.StringFixed(2))

	assert.True(t, days[1].Logged)
	assert.False(t, days[1].Exercised)

	assert.False(t, days[2].Logged)
	assert.True(t, days[2].Frozen)
	assert.Equal(t, "5.00", days[2].Balance.StringFixed(2))

	assert.True(t, days[3].Exercised)
}

func TestDailyCarriesBalanceFromBeforeRange(t *testing.T) {
	days := Daily([]model.LedgerEntry{entry(-5, true, "5.00")}, nil, monday, monday)
	require.Len(t, days, 1)
	assert.Equal(t, "5.00", days[0].Balance.StringFixed(2))
	assert.Empty(t, Daily(nil, nil, monday, monday.AddDays(-1)))
}

func TestWeekStart(t *testing.T) {
	for off := 0; off < 7; off++ {
		assert.Equal(t, monday, WeekStart(monday.AddDays(off)), "offset %d", off)
	}
	assert.Equal(t, monday.AddDays(-7), WeekStart(monday.AddDays(-1)))
}

func TestWeekly(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(-2, true, "5.00"),
		entry(0, true, "10.00"),
		entry(1, false, "5.00"),
		entry(2, false, "2.50"),
		entry(3, true, "7.50"),
	}
	frozen := model.NewDateSet(monday.AddDays(2), monday.AddDays(4))

	weeks := Weekly(entries, frozen)
	require.Len(t, weeks, 2)

	assert.Equal(t, monday, weeks[0].Start)
	assert.Equal(t, 2, weeks[0].Workouts)
	assert.Equal(t, 1, weeks[0].Misses)
	assert.Equal(t, 2, weeks[0].Frozen, "a frozen miss and a frozen unlogged day")
	assert.Equal(t, "7.50", weeks[0].EndBalance.StringFixed(2))

	assert.Equal(t, monday.AddDays(-7), weeks[1].Start)
	assert.Equal(t, 1, weeks[1].Workouts)
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name    string
		entries []model.LedgerEntry
		frozen  []int
		want    int
	}{
		{name: "empty", want: 0},
		{
			name:    "gap breaks",
			entries: []model.LedgerEntry{entry(0, true, "0"), entry(1, true, "0"), entry(3, true, "0")},
			want:    2,
		},
		{
			name:    "frozen gap bridges",
			entries: []model.LedgerEntry{entry(0, true, "0"), entry(1, true, "0"), entry(3, true, "0")},
			frozen:  []int{2},
			want:    3,
		},
		{
			name: "miss breaks",
			entries: []model.LedgerEntry{
				entry(0, true, "0"), entry(1, false, "0"), entry(2, true, "0"), entry(3, true, "0"), entry(4, true, "0"),
			},
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frozen := model.DateSet{}
			for _, off := range tt.frozen {
				frozen[monday.AddDays(off)] = struct{}{}
			}
			assert.Equal(t, tt.want, LongestStreak(tt.entries, frozen))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil, nil))

	entries := []model.LedgerEntry{
		entry(3, false, "5.00"),
		entry(0, true, "5.00"),
		entry(1, true, "10.00"),
		entry(2, true, "15.00"),
	}
	s := Summarize(entries, model.NewDateSet(monday.AddDays(3), monday.AddDays(30)))

	assert.Equal(t, monday, s.FirstDay)
	assert.Equal(t, monday.AddDays(3), s.LastDay)
	assert.Equal(t, 4, s.TotalDays)
	assert.Equal(t, 3, s.Workouts)
	assert.Equal(t, 1, s.Misses)
	assert.Equal(t, 1, s.FrozenDays)
	assert.InDelta(t, 0.75, s.CompletionRate, 1e-9)
	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, "15.00", s.PeakBalance.StringFixed(2))
	assert.Equal(t, monday.AddDays(2), s.PeakDate)
}

func TestRange(t *testing.T) {
	since, until := Range(monday, 7)
	assert.Equal(t, monday.AddDays(-6), since)
	assert.Equal(t, monday, until)
}
