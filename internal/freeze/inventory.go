// Package freeze manages streak freezes. A freeze is free to acquire and
// costs twice the current reward rate when spent on a day.
package freeze

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
)

// DefaultMax is how many freezes can be held at once.
const DefaultMax = 2

// Store persists the freeze inventory.
type Store interface {
	FreezeState(ctx context.Context) (model.FreezeState, error)
	SetAvailableFreezes(ctx context.Context, n int) error
	// RecordFreezeUse decrements the count, freezes d and adds cost to the
	// spending total in one transaction.
	RecordFreezeUse(ctx context.Context, d model.Date, cost decimal.Decimal, at time.Time) error
	RewardRate(ctx context.Context) (decimal.Decimal, error)
}

// Inventory acquires and spends freezes.
type Inventory struct {
	store Store
	max   int
	clock model.Clock
	log   zerolog.Logger
}

// NewInventory returns an inventory capped at max freezes. A max below one
// uses DefaultMax.
func NewInventory(store Store, max int, clock model.Clock, log zerolog.Logger) *Inventory {
	if max < 1 {
		max = DefaultMax
	}
	return &Inventory{
		store: store,
		max:   max,
		clock: clock,
		log:   log.With().Str("component", "freeze").Logger(),
	}
}

// Max is the inventory cap.
func (i *Inventory) Max() int { return i.max }

// State returns the current inventory.
func (i *Inventory) State(ctx context.Context) (model.FreezeState, error) {
	return i.store.FreezeState(ctx)
}

// Cost is what the next freeze would cost.
func (i *Inventory) Cost(ctx context.Context) (decimal.Decimal, error) {
	rate, err := i.store.RewardRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return money.FreezeCost(rate), nil
}

// Acquire adds one freeze unless the inventory is full.
func (i *Inventory) Acquire(ctx context.Context) (int, error) {
	fs, err := i.store.FreezeState(ctx)
	if err != nil {
		return 0, err
	}
	if fs.Available >= i.max {
		return fs.Available, model.Invalid(model.CodeMaxFreezes,
			"already holding the maximum of %d freezes", i.max)
	}
	n := fs.Available + 1
	if err := i.store.SetAvailableFreezes(ctx, n); err != nil {
		return fs.Available, err
	}
	i.log.Debug().Int("available", n).Msg("freeze acquired")
	return n, nil
}

// Use spends a freeze on d. The cost uses the reward rate at the moment of
// use, not any earlier one.
func (i *Inventory) Use(ctx context.Context, d model.Date) (decimal.Decimal, error) {
	if today := i.clock.Today(); d.After(today) {
		return decimal.Zero, model.Invalid(model.CodeFutureDate, "cannot freeze %s, it is in the future", d)
	}
	fs, err := i.store.FreezeState(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if fs.Available <= 0 {
		return decimal.Zero, model.Invalid(model.CodeNoFreezes, "no freezes available")
	}
	if fs.IsFrozen(d) {
		return decimal.Zero, model.Invalid(model.CodeAlreadyFrozen, "%s is already frozen", d)
	}

	cost, err := i.Cost(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if err := i.store.RecordFreezeUse(ctx, d, cost, i.clock.Now()); err != nil {
		return decimal.Zero, err
	}

	i.log.Info().Str("date", d.String()).Str("cost", cost.StringFixed(2)).Msg("freeze used")
	return cost, nil
}

// SetAvailable overrides the freeze count.
func (i *Inventory) SetAvailable(ctx context.Context, n int) error {
	if n < 0 || n > i.max {
		return model.Invalid(model.CodeInvalidFreezeCount, "freeze count must be between 0 and %d", i.max)
	}
	return i.store.SetAvailableFreezes(ctx, n)
}
