// Package model defines the domain types shared across oink.
package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one day's outcome and the ledger balance right after it.
type LedgerEntry struct {
	Date         Date            `json:"date"`
	Exercised    bool            `json:"exercised"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// DefaultEmoji decorates cash-outs created without one.
const DefaultEmoji = "🎁"

// Deduction is a cash-out: money spent from the piggy bank on a reward.
// The snapshots are informational; the projected balance is always derived
// from the live sum of amounts.
type Deduction struct {
	ID                   string          `json:"id"`
	Label                string          `json:"label"`
	Emoji                string          `json:"emoji"`
	Amount               decimal.Decimal `json:"amount"`
	CreatedAt            time.Time       `json:"created_at"`
	BalanceBefore        decimal.Decimal `json:"balance_before"`
	BalanceAfter         decimal.Decimal `json:"balance_after"`
	RewardRateAtCreation decimal.Decimal `json:"reward_rate_at_creation"`
}

// WorkoutsRepresented is how many workouts the amount took to earn at the
// reward rate in effect when the deduction was created.
func (d Deduction) WorkoutsRepresented() int {
	if !d.RewardRateAtCreation.IsPositive() {
		return 0
	}
	return int(d.Amount.Div(d.RewardRateAtCreation).Floor().IntPart())
}

// DateSet is an unordered set of calendar days. A nil set is empty.
type DateSet map[Date]struct{}

// NewDateSet builds a set from the given dates.
func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s DateSet) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in ascending order.
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// FreezeState is the streak insurance inventory.
type FreezeState struct {
	Available     int
	Frozen        DateSet
	TotalSpending decimal.Decimal
}

// IsFrozen reports whether d is streak-neutral.
func (f FreezeState) IsFrozen(d Date) bool {
	return f.Frozen.Has(d)
}

// Settings is the user-tunable state persisted next to the ledger.
type Settings struct {
	RewardRate          decimal.Decimal `json:"reward_rate"`
	AvailableFreezes    int             `json:"available_freezes"`
	FrozenDates         []Date          `json:"frozen_dates"`
	TotalFreezeSpending decimal.Decimal `json:"total_freeze_spending"`
}

// FrozenDay is one insured date together with what it cost.
type FrozenDay struct {
	Date     Date            `json:"date"`
	Cost     decimal.Decimal `json:"cost"`
	FrozenAt time.Time       `json:"frozen_at"`
}

// Archive is the complete persisted state of one ledger.
type Archive struct {
	Settings   Settings
	Entries    []LedgerEntry
	Deductions []Deduction
	Frozen     []FrozenDay
}
