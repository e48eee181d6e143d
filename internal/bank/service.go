// Package bank wires the ledger, cash-outs, freezes and projection into a
// single-writer service.
//
// Every mutation runs in two phases. Phase 1 persists the change and its
// cascade under the write lock with cancellation suppressed, so once it
// starts it finishes. Phase 2 re-derives the Snapshot under the read lock
// and publishes it to subscribers; it honours the caller's context and may
// be abandoned without harm.
package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/balance"
	"github.com/stephencockerill/oink/internal/freeze"
	"github.com/stephencockerill/oink/internal/ledger"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
	"github.com/stephencockerill/oink/internal/rewards"
)

// Store is the persistence every component of the bank shares.
type Store interface {
	ledger.Store
	rewards.Store
	freeze.Store
	balance.Store
	SetRewardRate(ctx context.Context, rate decimal.Decimal) error
	Settings(ctx context.Context) (model.Settings, error)
	Dump(ctx context.Context) (model.Archive, error)
	Restore(ctx context.Context, a model.Archive) error
}

// Options configures a Service.
type Options struct {
	MaxFreezes int
	Clock      model.Clock
	Logger     zerolog.Logger
	// SubscriberBuffer is the channel size handed to each subscriber.
	SubscriberBuffer int
}

// Mutation causes carried on published snapshots.
const (
	CauseRefresh        = "refresh"
	CauseRecordOutcome  = "record_outcome"
	CauseBulkRecord     = "bulk_record"
	CauseRebuild        = "rebuild"
	CauseCashOut        = "cash_out"
	CauseUpdateCashOut  = "update_cash_out"
	CauseDeleteCashOut  = "delete_cash_out"
	CauseAcquireFreeze  = "acquire_freeze"
	CauseUseFreeze      = "use_freeze"
	CauseSetRewardRate  = "set_reward_rate"
	CauseSetFreezeCount = "set_freeze_count"
	CauseImport         = "import"
)

// Service is the single writer over one oink database.
type Service struct {
	store     Store
	engine    *ledger.Engine
	rewards   *rewards.Tracker
	freezes   *freeze.Inventory
	projector *balance.Projector
	clock     model.Clock
	log       zerolog.Logger
	subBuffer int

	// mu orders mutations against each other and against aggregate reads.
	mu sync.RWMutex

	pubMu     sync.Mutex
	latest    Snapshot
	hasLatest bool
	nextSubID int
	subs      map[int]chan Snapshot
}

// New builds a service over st.
func New(st Store, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.SubscriberBuffer < 1 {
		opts.SubscriberBuffer = 8
	}
	log := opts.Logger.With().Str("component", "bank").Logger()
	projector := balance.NewProjector(st)

	return &Service{
		store:     st,
		engine:    ledger.NewEngine(st, st, opts.Clock, opts.Logger),
		rewards:   rewards.NewTracker(st, projector, st, opts.Clock, opts.Logger),
		freezes:   freeze.NewInventory(st, opts.MaxFreezes, opts.Clock, opts.Logger),
		projector: projector,
		clock:     opts.Clock,
		log:       log,
		subBuffer: opts.SubscriberBuffer,
		subs:      make(map[int]chan Snapshot),
	}
}

// Today is the current calendar day according to the service clock.
func (s *Service) Today() model.Date {
	return s.clock.Today()
}

// Now is the current time according to the service clock.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// MaxFreezes is the freeze inventory cap.
func (s *Service) MaxFreezes() int {
	return s.freezes.Max()
}

// mutate runs fn as phase 1 and then refreshes. A failed or abandoned
// refresh is logged; the write itself already happened.
func (s *Service) mutate(ctx context.Context, cause string, fn func(ctx context.Context) error) error {
	wctx := context.WithoutCancel(ctx)

	s.mu.Lock()
	err := fn(wctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := s.refresh(ctx, cause); err != nil {
		s.log.Debug().Err(err).Str("cause", cause).Msg("snapshot refresh skipped")
	}
	return nil
}

// RecordOutcome logs exercised or rest for date.
func (s *Service) RecordOutcome(ctx context.Context, date model.Date, exercised bool) (model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := s.mutate(ctx, CauseRecordOutcome, func(ctx context.Context) error {
		var err error
		entry, err = s.engine.RecordOutcome(ctx, date, exercised)
		return err
	})
	if err != nil {
		s.warnInconsistent(err)
	}
	return entry, err
}

// RecordToday logs today's outcome.
func (s *Service) RecordToday(ctx context.Context, exercised bool) (model.LedgerEntry, error) {
	return s.RecordOutcome(ctx, s.clock.Today(), exercised)
}

// BulkRecord applies one outcome to many dates with a single cascade.
func (s *Service) BulkRecord(ctx context.Context, dates []model.Date, exercised bool) (int, error) {
	var n int
	err := s.mutate(ctx, CauseBulkRecord, func(ctx context.Context) error {
		var err error
		n, err = s.engine.BulkRecordOutcomes(ctx, dates, exercised)
		return err
	})
	if err != nil {
		s.warnInconsistent(err)
	}
	return n, err
}

// Rebuild recomputes the whole ledger from scratch.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	var n int
	err := s.mutate(ctx, CauseRebuild, func(ctx context.Context) error {
		var err error
		n, err = s.engine.Rebuild(ctx)
		return err
	})
	return n, err
}

// CashOut takes amount out of the bank for a reward.
func (s *Service) CashOut(ctx context.Context, label string, amount decimal.Decimal, emoji string) (model.Deduction, error) {
	var d model.Deduction
	err := s.mutate(ctx, CauseCashOut, func(ctx context.Context) error {
		var err error
		d, err = s.rewards.Create(ctx, label, amount, emoji)
		return err
	})
	return d, err
}

// UpdateCashOut edits an existing cash-out.
func (s *Service) UpdateCashOut(ctx context.Context, id, label string, amount decimal.Decimal, emoji string) (model.Deduction, error) {
	var d model.Deduction
	err := s.mutate(ctx, CauseUpdateCashOut, func(ctx context.Context) error {
		var err error
		d, err = s.rewards.Update(ctx, id, label, amount, emoji)
		return err
	})
	return d, err
}

// DeleteCashOut removes a cash-out.
func (s *Service) DeleteCashOut(ctx context.Context, id string) error {
	return s.mutate(ctx, CauseDeleteCashOut, func(ctx context.Context) error {
		return s.rewards.Delete(ctx, id)
	})
}

// AcquireFreeze adds a freeze to the inventory and returns the new count.
func (s *Service) AcquireFreeze(ctx context.Context) (int, error) {
	var n int
	err := s.mutate(ctx, CauseAcquireFreeze, func(ctx context.Context) error {
		var err error
		n, err = s.freezes.Acquire(ctx)
		return err
	})
	return n, err
}

// UseFreeze spends a freeze on date and returns what it cost.
func (s *Service) UseFreeze(ctx context.Context, date model.Date) (decimal.Decimal, error) {
	var cost decimal.Decimal
	err := s.mutate(ctx, CauseUseFreeze, func(ctx context.Context) error {
		var err error
		cost, err = s.freezes.Use(ctx, date)
		return err
	})
	return cost, err
}

// SetRewardRate changes the amount earned per exercised day. Existing
// ledger balances are not recomputed.
func (s *Service) SetRewardRate(ctx context.Context, rate decimal.Decimal) error {
	rate = money.Round2(rate)
	if !rate.IsPositive() {
		return model.Invalid(model.CodeInvalidRate, "reward rate must be greater than zero")
	}
	return s.mutate(ctx, CauseSetRewardRate, func(ctx context.Context) error {
		return s.store.SetRewardRate(ctx, rate)
	})
}

// SetAvailableFreezes overrides the freeze count.
func (s *Service) SetAvailableFreezes(ctx context.Context, n int) error {
	return s.mutate(ctx, CauseSetFreezeCount, func(ctx context.Context) error {
		return s.freezes.SetAvailable(ctx, n)
	})
}

func (s *Service) warnInconsistent(err error) {
	if errors.Is(err, model.ErrLedgerInconsistent) {
		s.log.Warn().Err(err).Msg("ledger is inconsistent, run a rebuild")
	}
}

// Import replaces the whole database with a. With rebuild set the ledger
// balances are then recomputed at the imported reward rate; the returned
// count is the number of entries that rebuild rewrote.
func (s *Service) Import(ctx context.Context, a model.Archive, rebuild bool) (int, error) {
	if err := s.validateArchive(a); err != nil {
		return 0, err
	}
	var n int
	err := s.mutate(ctx, CauseImport, func(ctx context.Context) error {
		if err := s.store.Restore(ctx, a); err != nil {
			return fmt.Errorf("restoring: %w", err)
		}
		if !rebuild {
			return nil
		}
		var err error
		n, err = s.engine.Rebuild(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info().
		Int("entries", len(a.Entries)).
		Int("deductions", len(a.Deductions)).
		Int("frozen", len(a.Frozen)).
		Int("rebuilt", n).
		Msg("imported backup")
	return n, nil
}

func (s *Service) validateArchive(a model.Archive) error {
	if !a.Settings.RewardRate.IsPositive() {
		return model.Invalid(model.CodeInvalidRate, "backup reward rate must be greater than zero")
	}
	if n := a.Settings.AvailableFreezes; n < 0 || n > s.freezes.Max() {
		return model.Invalid(model.CodeInvalidFreezeCount, "backup has %d freezes, allowed 0 to %d", n, s.freezes.Max())
	}
	today := s.clock.Today()
	for _, en := range a.Entries {
		if en.Date.After(today) {
			return model.Invalid(model.CodeFutureDate, "backup has an entry for %s, which is in the future", en.Date)
		}
	}
	return nil
}
