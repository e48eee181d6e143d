package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
)

const deductionColumns = `id, label, emoji, amount, created_at_ns,
	balance_before, balance_after, reward_rate`

func scanDeduction(r rowScanner) (model.Deduction, error) {
	var d model.Deduction
	var createdNs int64
	err := r.Scan(&d.ID, &d.Label, &d.Emoji, &d.Amount, &createdNs,
		&d.BalanceBefore, &d.BalanceAfter, &d.RewardRateAtCreation)
	if err != nil {
		return model.Deduction{}, err
	}
	d.CreatedAt = time.Unix(0, createdNs)
	return d, nil
}

// InsertDeduction stores a new cash-out.
func (s *Store) InsertDeduction(ctx context.Context, d model.Deduction) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO deductions (`+deductionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Label, d.Emoji, money(d.Amount), d.CreatedAt.UnixNano(),
		money(d.BalanceBefore), money(d.BalanceAfter), money(d.RewardRateAtCreation),
	)
	if err != nil {
		return fmt.Errorf("inserting deduction: %w", err)
	}
	return nil
}

// UpdateDeduction rewrites the mutable fields of an existing cash-out.
// Creation time and rate snapshot are left alone.
func (s *Store) UpdateDeduction(ctx context.Context, d model.Deduction) error {
	res, err := s.db.ExecContext(ctx, `UPDATE deductions
		SET label = ?, emoji = ?, amount = ?, balance_before = ?, balance_after = ?
		WHERE id = ?`,
		d.Label, d.Emoji, money(d.Amount), money(d.BalanceBefore), money(d.BalanceAfter), d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating deduction: %w", err)
	}
	return affectedOne(res, d.ID)
}

// DeleteDeduction removes a cash-out.
func (s *Store) DeleteDeduction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM deductions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting deduction: %w", err)
	}
	return affectedOne(res, id)
}

// Deduction returns a single cash-out by id.
func (s *Store) Deduction(ctx context.Context, id string) (model.Deduction, error) {
	d, err := scanDeduction(s.db.QueryRowContext(ctx,
		"SELECT "+deductionColumns+" FROM deductions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deduction{}, fmt.Errorf("deduction %s: %w", id, model.ErrNotFound)
	}
	return d, err
}

// Deductions returns every cash-out, newest first.
func (s *Store) Deductions(ctx context.Context) ([]model.Deduction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+deductionColumns+" FROM deductions ORDER BY created_at_ns DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeductionTotal sums every cash-out amount.
func (s *Store) DeductionTotal(ctx context.Context) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT amount FROM deductions")
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = rows.Close() }()

	// Summed in Go; sqlite would add the TEXT amounts as floats.
	total := decimal.Zero
	for rows.Next() {
		var amt decimal.Decimal
		if err := rows.Scan(&amt); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amt)
	}
	return total, rows.Err()
}

// DeductionCount returns the number of cash-outs.
func (s *Store) DeductionCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deductions").Scan(&n)
	return n, err
}

func affectedOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deduction %s: %w", id, model.ErrNotFound)
	}
	return nil
}
