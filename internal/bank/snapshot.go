package bank

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/balance"
	"github.com/stephencockerill/oink/internal/ledger"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/money"
)

// Snapshot is the derived display state published after every mutation.
type Snapshot struct {
	At                 time.Time       `json:"at"`
	Cause              string          `json:"cause"`
	Today              model.Date      `json:"today"`
	ActualBalance      decimal.Decimal `json:"actual_balance"`
	LedgerBalance      decimal.Decimal `json:"ledger_balance"`
	Deductions         decimal.Decimal `json:"deductions"`
	FreezeSpending     decimal.Decimal `json:"freeze_spending"`
	Streak             int             `json:"streak"`
	AvailableFreezes   int             `json:"available_freezes"`
	MaxFreezes         int             `json:"max_freezes"`
	FrozenDates        []model.Date    `json:"frozen_dates"`
	RewardRate         decimal.Decimal `json:"reward_rate"`
	FreezeCost         decimal.Decimal `json:"freeze_cost"`
	ExercisePreview    decimal.Decimal `json:"exercise_preview"`
	MissPreview        decimal.Decimal `json:"miss_preview"`
	TodayLogged        bool            `json:"today_logged"`
	TodayExercised     bool            `json:"today_exercised"`
	MissedDayForFreeze *model.Date     `json:"missed_day_for_freeze,omitempty"`
	TotalWorkouts      int             `json:"total_workouts"`
	RewardCount        int             `json:"reward_count"`
	WorkoutsRewarded   int             `json:"workouts_rewarded"`
}

// NeedsReminder reports whether the user should be nudged today.
func (s Snapshot) NeedsReminder() bool {
	return !s.TodayLogged || !s.TodayExercised
}

// Summary is the read-only view handed to widgets.
type Summary struct {
	ActualBalance    decimal.Decimal `json:"actual_balance"`
	Streak           int             `json:"streak"`
	AvailableFreezes int             `json:"available_freezes"`
}

// Refresh re-derives the snapshot and publishes it.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	return s.refresh(ctx, CauseRefresh)
}

func (s *Service) refresh(ctx context.Context, cause string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	snap, err := s.derive(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Cause = cause
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.publish(snap)
	return snap, nil
}

// derive builds a snapshot from one consistent read of every store.
func (s *Service) derive(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	today := model.DateOf(now)

	br, err := s.projector.Breakdown(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	fs, err := s.freezes.State(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	rate, err := s.store.RewardRate(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	entries, err := s.store.Entries(ctx, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading ledger: %w", err)
	}
	cashOuts, err := s.rewards.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing cash-outs: %w", err)
	}

	byDate := ledger.Index(entries)
	todayEntry, todayLogged := byDate[today]

	workouts := 0
	for _, en := range entries {
		if en.Exercised {
			workouts++
		}
	}
	rewarded := 0
	for _, d := range cashOuts {
		rewarded += d.WorkoutsRepresented()
	}

	snap := Snapshot{
		At:               now,
		Today:            today,
		ActualBalance:    br.Actual,
		LedgerBalance:    br.Ledger,
		Deductions:       br.Deductions,
		FreezeSpending:   br.FreezeSpending,
		Streak:           ledger.Streak(byDate, fs.Frozen, today),
		AvailableFreezes: fs.Available,
		MaxFreezes:       s.freezes.Max(),
		FrozenDates:      fs.Frozen.Sorted(),
		RewardRate:       rate,
		FreezeCost:       money.FreezeCost(rate),
		ExercisePreview:  balance.Project(money.Apply(br.Ledger, true, rate), br.Deductions, br.FreezeSpending),
		MissPreview:      balance.Project(money.Apply(br.Ledger, false, rate), br.Deductions, br.FreezeSpending),
		TodayLogged:      todayLogged,
		TodayExercised:   todayLogged && todayEntry.Exercised,
		TotalWorkouts:    workouts,
		RewardCount:      len(cashOuts),
		WorkoutsRewarded: rewarded,
	}
	if d, ok := ledger.MissedDayForFreeze(byDate, fs.Frozen, today); ok {
		snap.MissedDayForFreeze = &d
	}
	return snap, nil
}

func (s *Service) publish(snap Snapshot) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.latest = snap
	s.hasLatest = true
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Latest returns the most recently published snapshot.
func (s *Service) Latest() (Snapshot, bool) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	return s.latest, s.hasLatest
}

// Subscribe registers for published snapshots. Slow subscribers miss
// snapshots rather than block publishing.
func (s *Service) Subscribe() (int, <-chan Snapshot) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.nextSubID++
	ch := make(chan Snapshot, s.subBuffer)
	s.subs[s.nextSubID] = ch
	return s.nextSubID, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Service) Unsubscribe(id int) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// SubscriberCount is the number of live subscribers.
func (s *Service) SubscriberCount() int {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	return len(s.subs)
}
