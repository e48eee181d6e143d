package bank

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/balance"
	"github.com/stephencockerill/oink/internal/ledger"
	"github.com/stephencockerill/oink/internal/model"
)

// History is a consistent read of the ledger and the frozen days.
type History struct {
	Entries []model.LedgerEntry
	Frozen  model.DateSet
}

// NeedsReminder reports whether today is unlogged or logged as a rest day.
func (s *Service) NeedsReminder(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	en, ok, err := s.store.EntryOn(ctx, s.clock.Today())
	if err != nil {
		return false, err
	}
	return !ok || !en.Exercised, nil
}

// Summary returns the widget accessors.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actual, err := s.projector.Actual(ctx)
	if err != nil {
		return Summary{}, err
	}
	fs, err := s.freezes.State(ctx)
	if err != nil {
		return Summary{}, err
	}
	entries, err := s.store.Entries(ctx, false)
	if err != nil {
		return Summary{}, fmt.Errorf("reading ledger: %w", err)
	}
	return Summary{
		ActualBalance:    actual,
		Streak:           ledger.Streak(ledger.Index(entries), fs.Frozen, s.clock.Today()),
		AvailableFreezes: fs.Available,
	}, nil
}

// Settings returns every setting.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Settings(ctx)
}

// Balance returns the actual balance with its components.
func (s *Service) Balance(ctx context.Context) (balance.Breakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projector.Breakdown(ctx)
}

// History returns the ledger ascending together with the frozen days.
func (s *Service) History(ctx context.Context) (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.store.Entries(ctx, false)
	if err != nil {
		return History{}, fmt.Errorf("reading ledger: %w", err)
	}
	frozen, err := s.freezes.State(ctx)
	if err != nil {
		return History{}, err
	}
	return History{Entries: entries, Frozen: frozen.Frozen}, nil
}

// CashOuts lists cash-outs, newest first.
func (s *Service) CashOuts(ctx context.Context) ([]model.Deduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards.List(ctx)
}

// GetCashOut returns one cash-out.
func (s *Service) GetCashOut(ctx context.Context, id string) (model.Deduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards.Get(ctx, id)
}

// FreezeCost is what using a freeze would cost right now.
func (s *Service) FreezeCost(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freezes.Cost(ctx)
}

// Export reads the whole database for a backup.
func (s *Service) Export(ctx context.Context) (model.Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Dump(ctx)
}
