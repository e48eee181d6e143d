package ledger

import (
	"context"
	"fmt"

	"github.com/stephencockerill/oink/internal/model"
)

// freezeLookback is how far back FindMissedDayForFreeze searches.
const freezeLookback = 7

// StreakCalculator derives the consecutive-exercise streak from the ledger.
type StreakCalculator struct {
	store Store
	clock model.Clock
}

// NewStreakCalculator returns a calculator reading from store.
func NewStreakCalculator(store Store, clock model.Clock) *StreakCalculator {
	return &StreakCalculator{store: store, clock: clock}
}

// CalculateStreak counts exercised days walking back from today. Frozen
// dates neither count nor break the streak, and an unlogged today is
// skipped. There is no lookback bound; the walk ends at the first unfrozen
// gap or miss.
func (s *StreakCalculator) CalculateStreak(ctx context.Context, frozen model.DateSet) (int, error) {
	byDate, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return Streak(byDate, frozen, s.clock.Today()), nil
}

// FindMissedDayForFreeze returns the most recent day in the last week,
// starting at yesterday, that is unlogged or missed and not yet frozen.
func (s *StreakCalculator) FindMissedDayForFreeze(ctx context.Context, frozen model.DateSet) (model.Date, bool, error) {
	byDate, err := s.snapshot(ctx)
	if err != nil {
		return 0, false, err
	}
	d, ok := MissedDayForFreeze(byDate, frozen, s.clock.Today())
	return d, ok, nil
}

// snapshot reads the ledger once so the walk sees a single consistent state.
func (s *StreakCalculator) snapshot(ctx context.Context) (map[model.Date]model.LedgerEntry, error) {
	entries, err := s.store.Entries(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return Index(entries), nil
}

// Index maps entries by date.
func Index(entries []model.LedgerEntry) map[model.Date]model.LedgerEntry {
	byDate := make(map[model.Date]model.LedgerEntry, len(entries))
	for _, en := range entries {
		byDate[en.Date] = en
	}
	return byDate
}

// Streak runs the backward walk over an indexed ledger.
func Streak(byDate map[model.Date]model.LedgerEntry, frozen model.DateSet, today model.Date) int {
	streak := 0
	for cursor := today; ; cursor = cursor.AddDays(-1) {
		en, logged := byDate[cursor]
		switch {
		case !logged && cursor == today:
			// Not logged yet today; the streak is still alive.
		case !logged && frozen.Has(cursor):
		case !logged:
			return streak
		case !en.Exercised && frozen.Has(cursor):
		case !en.Exercised:
			return streak
		default:
			streak++
		}
	}
}

// MissedDayForFreeze finds the freeze candidate over an indexed ledger.
func MissedDayForFreeze(byDate map[model.Date]model.LedgerEntry, frozen model.DateSet, today model.Date) (model.Date, bool) {
	cursor := today.AddDays(-1)
	for i := 0; i < freezeLookback; i++ {
		if !frozen.Has(cursor) {
			en, logged := byDate[cursor]
			if !logged || !en.Exercised {
				return cursor, true
			}
		}
		cursor = cursor.AddDays(-1)
	}
	return 0, false
}
