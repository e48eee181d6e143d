package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/model"
)

func seed(t *testing.T, st *memStore, outcomes map[int]bool) {
	t.Helper()
	var entries []model.LedgerEntry
	for off, ex := range outcomes {
		entries = append(entries, model.LedgerEntry{Date: today().AddDays(off), Exercised: ex})
	}
	require.NoError(t, st.UpsertEntries(context.Background(), entries))
}

func TestCalculateStreak(t *testing.T) {
	tests := []struct {
		name     string
		outcomes map[int]bool
		frozen   []int
		want     int
	}{
		{name: "empty ledger", want: 0},
		{name: "three days, today unlogged", outcomes: map[int]bool{-3: true, -2: true, -1: true}, want: 3},
		{name: "today logged", outcomes: map[int]bool{-1: true, 0: true}, want: 2},
		{name: "today missed breaks", outcomes: map[int]bool{-1: true, 0: false}, want: 0},
		{name: "gap breaks", outcomes: map[int]bool{-4: true, -3: true, -1: true}, want: 1},
		{name: "frozen gap bridges", outcomes: map[int]bool{-4: true, -3: true, -1: true}, frozen: []int{-2}, want: 3},
		{name: "frozen miss bridges", outcomes: map[int]bool{-3: true, -2: false, -1: true}, frozen: []int{-2}, want: 2},
		{name: "unfrozen miss breaks", outcomes: map[int]bool{-3: true, -2: false, -1: true}, want: 1},
		{name: "yesterday unlogged", outcomes: map[int]bool{-3: true, -2: true}, want: 0},
		{name: "frozen yesterday", outcomes: map[int]bool{-3: true, -2: true}, frozen: []int{-1}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			seed(t, st, tt.outcomes)
			frozen := model.DateSet{}
			for _, off := range tt.frozen {
				frozen[today().AddDays(off)] = struct{}{}
			}
			calc := NewStreakCalculator(st, model.FixedClock(testNow))
			got, err := calc.CalculateStreak(context.Background(), frozen)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLongUnbrokenStreakHasNoCap(t *testing.T) {
	st := newMemStore()
	outcomes := make(map[int]bool)
	for off := -400; off <= 0; off++ {
		outcomes[off] = true
	}
	seed(t, st, outcomes)
	got, err := NewStreakCalculator(st, model.FixedClock(testNow)).CalculateStreak(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 401, got)
}

func TestFindMissedDayForFreeze(t *testing.T) {
	tests := []struct {
		name     string
		outcomes map[int]bool
		frozen   []int
		want     int
		found    bool
	}{
		{name: "yesterday unlogged", outcomes: map[int]bool{0: true}, want: -1, found: true},
		{name: "rest day counts", outcomes: map[int]bool{-2: true, -1: false}, want: -1, found: true},
		{name: "skips frozen", outcomes: map[int]bool{-2: false}, frozen: []int{-1}, want: -2, found: true},
		{name: "first gap behind exercise days", outcomes: map[int]bool{-1: true, -2: true}, want: -3, found: true},
		{
			name:     "clean week",
			outcomes: map[int]bool{-1: true, -2: true, -3: true, -4: true, -5: true, -6: true, -7: true},
		},
		{
			name:     "miss beyond window ignored",
			outcomes: map[int]bool{-1: true, -2: true, -3: true, -4: true, -5: true, -6: true},
			frozen:   []int{-7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			seed(t, st, tt.outcomes)
			frozen := model.DateSet{}
			for _, off := range tt.frozen {
				frozen[today().AddDays(off)] = struct{}{}
			}
			d, ok, err := NewStreakCalculator(st, model.FixedClock(testNow)).FindMissedDayForFreeze(context.Background(), frozen)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, today().AddDays(tt.want), d)
			}
		})
	}
}
