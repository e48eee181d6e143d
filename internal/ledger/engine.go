// Package ledger keeps the daily balance chain consistent and derives the
// exercise streak from it.
//
// Every entry's balance is a function of the nearest earlier entry's balance,
// the entry's own outcome and the reward rate at the time of computation.
// Editing a past day therefore rewrites every later entry.
package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
)

// Store is the persistence the engine needs. Entries are unique by date.
type Store interface {
	EntryOn(ctx context.Context, d model.Date) (model.LedgerEntry, bool, error)
	EntryBefore(ctx context.Context, d model.Date) (model.LedgerEntry, bool, error)
	LatestEntry(ctx context.Context) (model.LedgerEntry, bool, error)
	// EntriesAfter returns entries strictly after d, ascending.
	EntriesAfter(ctx context.Context, d model.Date) ([]model.LedgerEntry, error)
	// Entries returns every entry, ascending unless desc is set.
	Entries(ctx context.Context, desc bool) ([]model.LedgerEntry, error)
	// UpsertEntries writes all entries in a single transaction.
	UpsertEntries(ctx context.Context, entries []model.LedgerEntry) error
	WorkoutCount(ctx context.Context) (int, error)
}

// RateSource reports the reward rate currently in effect.
type RateSource interface {
	RewardRate(ctx context.Context) (decimal.Decimal, error)
}

// Engine records outcomes and cascades balance changes forward.
type Engine struct {
	store Store
	rates RateSource
	clock model.Clock
	log   zerolog.Logger
}

// NewEngine returns an engine over the given store.
func NewEngine(store Store, rates RateSource, clock model.Clock, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		rates: rates,
		clock: clock,
		log:   log.With().Str("component", "ledger").Logger(),
	}
}

// RecordOutcome sets the outcome for date and brings every later entry back
// in line. Recording the same outcome twice is a no-op.
func (e *Engine) RecordOutcome(ctx context.Context, date model.Date, exercised bool) (model.LedgerEntry, error) {
	if today := e.clock.Today(); date.After(today) {
		return model.LedgerEntry{}, model.Invalid(model.CodeFutureDate,
			"cannot log %s, it is in the future", date)
	}

	existing, ok, err := e.store.EntryOn(ctx, date)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("reading entry for %s: %w", date, err)
	}
	if ok && existing.Exercised == exercised {
		return existing, nil
	}

	rate, err := e.rates.RewardRate(ctx)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("reading reward rate: %w", err)
	}
	prev, err := e.balanceBefore(ctx, date)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	entry := model.LedgerEntry{
		Date:         date,
		Exercised:    exercised,
		BalanceAfter: money.Apply(prev, exercised, rate),
	}

	later, err := e.store.EntriesAfter(ctx, date)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("reading entries after %s: %w", date, err)
	}
	changed, err := cascade(date, entry.BalanceAfter, later, rate)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	writes := append([]model.LedgerEntry{entry}, changed...)
	if err := e.store.UpsertEntries(ctx, writes); err != nil {
		return model.LedgerEntry{}, fmt.Errorf("saving entry for %s: %w", date, err)
	}

	e.log.Debug().
		Str("date", date.String()).
		Bool("exercised", exercised).
		Str("balance", entry.BalanceAfter.StringFixed(2)).
		Int("cascaded", len(changed)).
		Msg("recorded outcome")

	return entry, nil
}

// BulkRecordOutcomes applies one outcome to every date and then runs a
// single cascade from the earliest of them. It returns the number of
// entries written.
func (e *Engine) BulkRecordOutcomes(ctx context.Context, dates []model.Date, exercised bool) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	today := e.clock.Today()
	targets := make(model.DateSet, len(dates))
	earliest := dates[0]
	for _, d := range dates {
		if d.After(today) {
			return 0, model.Invalid(model.CodeFutureDate, "cannot log %s, it is in the future", d)
		}
		targets[d] = struct{}{}
		if d.Before(earliest) {
			earliest = d
		}
	}

	rate, err := e.rates.RewardRate(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading reward rate: %w", err)
	}
	prev, err := e.balanceBefore(ctx, earliest)
	if err != nil {
		return 0, err
	}

	// Entries on or after the earliest target.
	tail, err := e.store.EntriesAfter(ctx, earliest.AddDays(-1))
	if err != nil {
		return 0, fmt.Errorf("reading entries from %s: %w", earliest, err)
	}

	stored := make(map[model.Date]model.LedgerEntry, len(tail))
	for _, en := range tail {
		stored[en.Date] = en
	}
	days := make([]model.Date, 0, len(tail)+len(targets))
	for _, en := range tail {
		days = append(days, en.Date)
	}
	for d := range targets {
		if _, ok := stored[d]; !ok {
			days = append(days, d)
		}
	}
	slices.Sort(days)

	var writes []model.LedgerEntry
	balance := prev
	for _, d := range days {
		old, had := stored[d]
		outcome := old.Exercised
		if targets.Has(d) {
			outcome = exercised
		}
		balance = money.Apply(balance, outcome, rate)
		if !had || old.Exercised != outcome || !old.BalanceAfter.Equal(balance) {
			writes = append(writes, model.LedgerEntry{Date: d, Exercised: outcome, BalanceAfter: balance})
		}
	}

	if len(writes) == 0 {
		return 0, nil
	}
	if err := e.store.UpsertEntries(ctx, writes); err != nil {
		return 0, fmt.Errorf("saving bulk outcomes: %w", err)
	}

	e.log.Debug().
		Int("dates", len(targets)).
		Bool("exercised", exercised).
		Int("written", len(writes)).
		Msg("bulk recorded outcomes")

	return len(writes), nil
}

// PreviewOutcome returns the ledger balance today's outcome would produce,
// without writing anything.
func (e *Engine) PreviewOutcome(ctx context.Context, exercised bool) (decimal.Decimal, error) {
	rate, err := e.rates.RewardRate(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading reward rate: %w", err)
	}
	current, err := e.CurrentBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Apply(current, exercised, rate), nil
}

// Rebuild recomputes the whole chain from an empty balance with the current
// reward rate. It is the recovery path for ErrLedgerInconsistent and returns
// the number of entries rewritten.
func (e *Engine) Rebuild(ctx context.Context) (int, error) {
	rate, err := e.rates.RewardRate(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading reward rate: %w", err)
	}
	all, err := e.store.Entries(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("reading ledger: %w", err)
	}

	var writes []model.LedgerEntry
	balance := money.Zero
	for _, en := range all {
		balance = money.Apply(balance, en.Exercised, rate)
		if !balance.Equal(en.BalanceAfter) {
			en.BalanceAfter = balance
			writes = append(writes, en)
		}
	}
	if len(writes) > 0 {
		if err := e.store.UpsertEntries(ctx, writes); err != nil {
			return 0, fmt.Errorf("saving rebuilt ledger: %w", err)
		}
	}

	e.log.Info().Int("entries", len(all)).Int("rewritten", len(writes)).Msg("rebuilt ledger")
	return len(writes), nil
}

// CurrentBalance is the balance after the latest entry, or zero.
func (e *Engine) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	latest, ok, err := e.store.LatestEntry(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading latest entry: %w", err)
	}
	if !ok {
		return money.Zero, nil
	}
	return latest.BalanceAfter, nil
}

// EntryOn returns the entry for d, if any.
func (e *Engine) EntryOn(ctx context.Context, d model.Date) (model.LedgerEntry, bool, error) {
	return e.store.EntryOn(ctx, d)
}

// History returns every entry, newest first.
func (e *Engine) History(ctx context.Context) ([]model.LedgerEntry, error) {
	return e.store.Entries(ctx, true)
}

// WorkoutCount is the number of exercised days.
func (e *Engine) WorkoutCount(ctx context.Context) (int, error) {
	return e.store.WorkoutCount(ctx)
}

func (e *Engine) balanceBefore(ctx context.Context, date model.Date) (decimal.Decimal, error) {
	prev, ok, err := e.store.EntryBefore(ctx, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading entry before %s: %w", date, err)
	}
	if !ok {
		return money.Zero, nil
	}
	if !prev.Date.Before(date) {
		return decimal.Zero, fmt.Errorf("entry %s returned as predecessor of %s: %w",
			prev.Date, date, model.ErrLedgerInconsistent)
	}
	return prev.BalanceAfter, nil
}

// cascade walks later (ascending, all after from) starting from balance and
// returns the entries whose stored balance no longer matches.
func cascade(from model.Date, balance decimal.Decimal, later []model.LedgerEntry, rate decimal.Decimal) ([]model.LedgerEntry, error) {
	var changed []model.LedgerEntry
	last := from
	for _, en := range later {
		if !en.Date.After(last) {
			return nil, fmt.Errorf("entry %s out of order after %s: %w", en.Date, last, model.ErrLedgerInconsistent)
		}
		last = en.Date
		balance = money.Apply(balance, en.Exercised, rate)
		if !balance.Equal(en.BalanceAfter) {
			en.BalanceAfter = balance
			changed = append(changed, en)
		}
	}
	return changed, nil
}
