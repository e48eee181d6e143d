package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stephencockerill/oink/internal/model"
)

// FrozenDays returns every insured date with its cost, oldest first.
func (s *Store) FrozenDays(ctx context.Context) ([]model.FrozenDay, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT epoch_day, cost, frozen_at_ns FROM frozen_dates ORDER BY epoch_day")
	if err != nil {
		return nil, fmt.Errorf("reading frozen days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.FrozenDay
	for rows.Next() {
		var fd model.FrozenDay
		var day, atNs int64
		if err := rows.Scan(&day, &fd.Cost, &atNs); err != nil {
			return nil, err
		}
		fd.Date = model.Date(day)
		fd.FrozenAt = time.Unix(0, atNs)
		out = append(out, fd)
	}
	return out, rows.Err()
}

// Dump reads the whole database. Callers serialise it against writers.
func (s *Store) Dump(ctx context.Context) (model.Archive, error) {
	var snap model.Archive
	var err error
	if snap.Settings, err = s.Settings(ctx); err != nil {
		return model.Archive{}, err
	}
	if snap.Entries, err = s.Entries(ctx, false); err != nil {
		return model.Archive{}, err
	}
	if snap.Deductions, err = s.Deductions(ctx); err != nil {
		return model.Archive{}, err
	}
	if snap.Frozen, err = s.FrozenDays(ctx); err != nil {
		return model.Archive{}, err
	}
	return snap, nil
}

// Restore replaces every table with the contents of snap. It succeeds or
// leaves the database untouched.
func (s *Store) Restore(ctx context.Context, snap model.Archive) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"ledger_entries", "deductions", "frozen_dates", "settings"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		st := snap.Settings
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings
			(id, reward_rate, available_freezes, total_freeze_spending) VALUES (1, ?, ?, ?)`,
			money(st.RewardRate), st.AvailableFreezes, money(st.TotalFreezeSpending)); err != nil {
			return fmt.Errorf("restoring settings: %w", err)
		}

		for _, en := range snap.Entries {
			if _, err := tx.ExecContext(ctx, `INSERT INTO ledger_entries (epoch_day, exercised, balance_after)
				VALUES (?, ?, ?)`, int64(en.Date), boolInt(en.Exercised), money(en.BalanceAfter)); err != nil {
				return fmt.Errorf("restoring %s: %w", en.Date, err)
			}
		}

		for _, d := range snap.Deductions {
			if _, err := tx.ExecContext(ctx, `INSERT INTO deductions (`+deductionColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				d.ID, d.Label, d.Emoji, money(d.Amount), d.CreatedAt.UnixNano(),
				money(d.BalanceBefore), money(d.BalanceAfter), money(d.RewardRateAtCreation),
			); err != nil {
				return fmt.Errorf("restoring deduction %s: %w", d.ID, err)
			}
		}

		for _, fd := range snap.Frozen {
			if _, err := tx.ExecContext(ctx, `INSERT INTO frozen_dates (epoch_day, cost, frozen_at_ns)
				VALUES (?, ?, ?)`, int64(fd.Date), money(fd.Cost), fd.FrozenAt.UnixNano()); err != nil {
				return fmt.Errorf("restoring freeze %s: %w", fd.Date, err)
			}
		}
		return nil
	})
}
