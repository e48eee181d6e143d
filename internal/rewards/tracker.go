// Package rewards tracks cash-outs: money taken out of the piggy bank for a
// treat. Cash-outs never touch the ledger; they are subtracted at
// projection time.
package rewards

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
)

// Store persists deductions.
type Store interface {
	InsertDeduction(ctx context.Context, d model.Deduction) error
	UpdateDeduction(ctx context.Context, d model.Deduction) error
	DeleteDeduction(ctx context.Context, id string) error
	Deduction(ctx context.Context, id string) (model.Deduction, error)
	Deductions(ctx context.Context) ([]model.Deduction, error)
	DeductionTotal(ctx context.Context) (decimal.Decimal, error)
	DeductionCount(ctx context.Context) (int, error)
}

// BalanceSource reports the spendable balance.
type BalanceSource interface {
	Actual(ctx context.Context) (decimal.Decimal, error)
}

// RateSource reports the current reward rate.
type RateSource interface {
	RewardRate(ctx context.Context) (decimal.Decimal, error)
}

// Tracker creates, edits and removes cash-outs.
type Tracker struct {
	store   Store
	balance BalanceSource
	rates   RateSource
	clock   model.Clock
	newID   func() string
	log     zerolog.Logger
}

// NewTracker returns a tracker.
func NewTracker(store Store, balance BalanceSource, rates RateSource, clock model.Clock, log zerolog.Logger) *Tracker {
	return &Tracker{
		store:   store,
		balance: balance,
		rates:   rates,
		clock:   clock,
		newID:   uuid.NewString,
		log:     log.With().Str("component", "rewards").Logger(),
	}
}

// Create records a cash-out of amount against the current actual balance.
// An empty emoji falls back to the default.
func (t *Tracker) Create(ctx context.Context, label string, amount decimal.Decimal, emoji string) (model.Deduction, error) {
	label = strings.TrimSpace(label)
	amount = money.Round2(amount)
	if err := validate(label, amount); err != nil {
		return model.Deduction{}, err
	}

	actual, err := t.balance.Actual(ctx)
	if err != nil {
		return model.Deduction{}, err
	}
	if amount.GreaterThan(actual) {
		return model.Deduction{}, model.Invalid(model.CodeInsufficientBalance,
			"cannot cash out $%s, only $%s available", amount.StringFixed(2), actual.StringFixed(2))
	}
	rate, err := t.rates.RewardRate(ctx)
	if err != nil {
		return model.Deduction{}, err
	}

	d := model.Deduction{
		ID:                   t.newID(),
		Label:                label,
		Emoji:                emojiOrDefault(emoji),
		Amount:               amount,
		CreatedAt:            t.clock.Now(),
		BalanceBefore:        actual,
		BalanceAfter:         money.Round2(actual.Sub(amount)),
		RewardRateAtCreation: rate,
	}
	if err := t.store.InsertDeduction(ctx, d); err != nil {
		return model.Deduction{}, err
	}

	t.log.Debug().Str("id", d.ID).Str("label", d.Label).Str("amount", d.Amount.StringFixed(2)).Msg("cash-out created")
	return d, nil
}

// Update changes the label, amount and emoji of a cash-out. The new amount
// may use whatever the old one freed up plus the current actual balance.
// An empty emoji keeps the existing one.
func (t *Tracker) Update(ctx context.Context, id, label string, amount decimal.Decimal, emoji string) (model.Deduction, error) {
	label = strings.TrimSpace(label)
	amount = money.Round2(amount)
	if err := validate(label, amount); err != nil {
		return model.Deduction{}, err
	}

	d, err := t.store.Deduction(ctx, id)
	if err != nil {
		return model.Deduction{}, err
	}
	actual, err := t.balance.Actual(ctx)
	if err != nil {
		return model.Deduction{}, err
	}
	limit := actual.Add(d.Amount)
	if amount.GreaterThan(limit) {
		return model.Deduction{}, model.Invalid(model.CodeInsufficientBalance,
			"cannot raise cash-out to $%s, only $%s available", amount.StringFixed(2), limit.StringFixed(2))
	}

	d.Label = label
	d.Amount = amount
	if emoji != "" {
		d.Emoji = emoji
	}
	d.BalanceAfter = money.Round2(d.BalanceBefore.Sub(amount))
	if err := t.store.UpdateDeduction(ctx, d); err != nil {
		return model.Deduction{}, err
	}

	t.log.Debug().Str("id", d.ID).Str("amount", d.Amount.StringFixed(2)).Msg("cash-out updated")
	return d, nil
}

// Delete removes a cash-out. The balance goes back up on the next read.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.store.DeleteDeduction(ctx, id); err != nil {
		return err
	}
	t.log.Debug().Str("id", id).Msg("cash-out deleted")
	return nil
}

// Get returns one cash-out.
func (t *Tracker) Get(ctx context.Context, id string) (model.Deduction, error) {
	return t.store.Deduction(ctx, id)
}

// List returns every cash-out, newest first.
func (t *Tracker) List(ctx context.Context) ([]model.Deduction, error) {
	return t.store.Deductions(ctx)
}

// Total is the sum of all cash-outs.
func (t *Tracker) Total(ctx context.Context) (decimal.Decimal, error) {
	return t.store.DeductionTotal(ctx)
}

// Count is the number of cash-outs.
func (t *Tracker) Count(ctx context.Context) (int, error) {
	return t.store.DeductionCount(ctx)
}

// TotalWorkoutsRewarded sums the workouts each cash-out stood for at the
// rate in effect when it was made.
func (t *Tracker) TotalWorkoutsRewarded(ctx context.Context) (int, error) {
	all, err := t.store.Deductions(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing deductions: %w", err)
	}
	total := 0
	for _, d := range all {
		total += d.WorkoutsRepresented()
	}
	return total, nil
}

func validate(label string, amount decimal.Decimal) error {
	if label == "" {
		return model.Invalid(model.CodeBlankLabel, "reward name cannot be empty")
	}
	if !amount.IsPositive() {
		return model.Invalid(model.CodeNonPositiveAmount, "amount must be greater than zero")
	}
	return nil
}

func emojiOrDefault(e string) string {
	if e = strings.TrimSpace(e); e == "" {
		return model.DefaultEmoji
	}
	return e
}
