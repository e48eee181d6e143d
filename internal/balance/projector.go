// Package balance derives the spendable balance from the ledger, cash-outs
// and freeze spending. Nothing here is persisted.
package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
)

// Store is what the projector reads.
type Store interface {
	LatestEntry(ctx context.Context) (model.LedgerEntry, bool, error)
	DeductionTotal(ctx context.Context) (decimal.Decimal, error)
	FreezeState(ctx context.Context) (model.FreezeState, error)
}

// Breakdown shows how the actual balance was reached.
type Breakdown struct {
	Ledger         decimal.Decimal `json:"ledger"`
	Deductions     decimal.Decimal `json:"deductions"`
	FreezeSpending decimal.Decimal `json:"freeze_spending"`
	Actual         decimal.Decimal `json:"actual"`
}

// Projector computes the actual balance on every call.
type Projector struct {
	store Store
}

// NewProjector returns a projector over store.
func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// Actual is the ledger balance less cash-outs and freeze spending, never
// below zero.
func (p *Projector) Actual(ctx context.Context) (decimal.Decimal, error) {
	b, err := p.Breakdown(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Actual, nil
}

// Breakdown returns the actual balance with its components.
func (p *Projector) Breakdown(ctx context.Context) (Breakdown, error) {
	ledger := money.Zero
	latest, ok, err := p.store.LatestEntry(ctx)
	if err != nil {
		return Breakdown{}, fmt.Errorf("reading latest entry: %w", err)
	}
	if ok {
		ledger = latest.BalanceAfter
	}

	deductions, err := p.store.DeductionTotal(ctx)
	if err != nil {
		return Breakdown{}, fmt.Errorf("summing deductions: %w", err)
	}
	fs, err := p.store.FreezeState(ctx)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Ledger:         ledger,
		Deductions:     deductions,
		FreezeSpending: fs.TotalSpending,
		Actual:         Project(ledger, deductions, fs.TotalSpending),
	}, nil
}

// AfterDeduction is the actual balance once amount is cashed out.
func (p *Projector) AfterDeduction(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	actual, err := p.Actual(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Floor0(money.Round2(actual.Sub(amount))), nil
}

// Project applies the projection formula to a raw ledger balance.
func Project(ledger, deductions, freezeSpending decimal.Decimal) decimal.Decimal {
	return money.Floor0(money.Round2(ledger.Sub(deductions).Sub(freezeSpending)))
}
