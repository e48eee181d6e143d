package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
)

// EnsureSettings seeds the settings row on first use. An existing row is
// left untouched.
func (s *Store) EnsureSettings(ctx context.Context, defaultRate decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO settings
		(id, reward_rate, available_freezes, total_freeze_spending) VALUES (1, ?, 0, '0.00')`,
		money(defaultRate))
	if err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	return nil
}

// RewardRate returns the current reward rate.
func (s *Store) RewardRate(ctx context.Context) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.db.QueryRowContext(ctx, "SELECT reward_rate FROM settings WHERE id = 1").Scan(&rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading reward rate: %w", err)
	}
	return rate, nil
}

// SetRewardRate replaces the reward rate.
func (s *Store) SetRewardRate(ctx context.Context, rate decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, "UPDATE settings SET reward_rate = ? WHERE id = 1", money(rate))
	return err
}

// Settings returns the full settings record.
func (s *Store) Settings(ctx context.Context) (model.Settings, error) {
	var st model.Settings
	err := s.db.QueryRowContext(ctx, `SELECT reward_rate, available_freezes, total_freeze_spending
		FROM settings WHERE id = 1`).Scan(&st.RewardRate, &st.AvailableFreezes, &st.TotalFreezeSpending)
	if err != nil {
		return model.Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	frozen, err := s.frozenDates(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	st.FrozenDates = frozen.Sorted()
	return st, nil
}

// FreezeState returns the freeze inventory.
func (s *Store) FreezeState(ctx context.Context) (model.FreezeState, error) {
	var fs model.FreezeState
	err := s.db.QueryRowContext(ctx, `SELECT available_freezes, total_freeze_spending
		FROM settings WHERE id = 1`).Scan(&fs.Available, &fs.TotalSpending)
	if err != nil {
		return model.FreezeState{}, fmt.Errorf("reading freeze state: %w", err)
	}
	fs.Frozen, err = s.frozenDates(ctx)
	if err != nil {
		return model.FreezeState{}, err
	}
	return fs, nil
}

// FrozenDates returns the insured dates.
func (s *Store) FrozenDates(ctx context.Context) (model.DateSet, error) {
	return s.frozenDates(ctx)
}

// SetAvailableFreezes overwrites the freeze count.
func (s *Store) SetAvailableFreezes(ctx context.Context, n int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE settings SET available_freezes = ? WHERE id = 1", n)
	return err
}

// RecordFreezeUse spends one freeze on d. The count, the frozen set and the
// spending total change together or not at all.
func (s *Store) RecordFreezeUse(ctx context.Context, d model.Date, cost decimal.Decimal, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var available int
		var spending decimal.Decimal
		err := tx.QueryRowContext(ctx, `SELECT available_freezes, total_freeze_spending
			FROM settings WHERE id = 1`).Scan(&available, &spending)
		if err != nil {
			return fmt.Errorf("reading freeze state: %w", err)
		}
		if available <= 0 {
			return model.Invalid(model.CodeNoFreezes, "no freezes available")
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO frozen_dates (epoch_day, cost, frozen_at_ns)
			VALUES (?, ?, ?)`, int64(d), money(cost), at.UnixNano()); err != nil {
			return fmt.Errorf("freezing %s: %w", d, err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE settings
			SET available_freezes = ?, total_freeze_spending = ? WHERE id = 1`,
			available-1, money(spending.Add(cost)))
		return err
	})
}

func (s *Store) frozenDates(ctx context.Context) (model.DateSet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT epoch_day FROM frozen_dates")
	if err != nil {
		return nil, fmt.Errorf("reading frozen dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := model.DateSet{}
	for rows.Next() {
		var day int64
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		set[model.Date(day)] = struct{}{}
	}
	return set, rows.Err()
}
