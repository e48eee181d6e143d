package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stephencockerill/oink/internal/model"
)

const entryColumns = "epoch_day, exercised, balance_after"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (model.LedgerEntry, error) {
	var en model.LedgerEntry
	var day int64
	var exercised int
	if err := r.Scan(&day, &exercised, &en.BalanceAfter); err != nil {
		return model.LedgerEntry{}, err
	}
	en.Date = model.Date(day)
	en.Exercised = exercised != 0
	return en, nil
}

func (s *Store) queryEntry(ctx context.Context, query string, args ...any) (model.LedgerEntry, bool, error) {
	en, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.LedgerEntry{}, false, nil
	}
	if err != nil {
		return model.LedgerEntry{}, false, err
	}
	return en, true, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.LedgerEntry
	for rows.Next() {
		en, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, en)
	}
	return out, rows.Err()
}

// EntryOn returns the entry for d.
func (s *Store) EntryOn(ctx context.Context, d model.Date) (model.LedgerEntry, bool, error) {
	return s.queryEntry(ctx, "SELECT "+entryColumns+" FROM ledger_entries WHERE epoch_day = ?", int64(d))
}

// EntryBefore returns the nearest entry strictly before d.
func (s *Store) EntryBefore(ctx context.Context, d model.Date) (model.LedgerEntry, bool, error) {
	return s.queryEntry(ctx, "SELECT "+entryColumns+
		" FROM ledger_entries WHERE epoch_day < ? ORDER BY epoch_day DESC LIMIT 1", int64(d))
}

// LatestEntry returns the most recent entry.
func (s *Store) LatestEntry(ctx context.Context) (model.LedgerEntry, bool, error) {
	return s.queryEntry(ctx, "SELECT "+entryColumns+" FROM ledger_entries ORDER BY epoch_day DESC LIMIT 1")
}

// EntriesAfter returns entries strictly after d, ascending.
func (s *Store) EntriesAfter(ctx context.Context, d model.Date) ([]model.LedgerEntry, error) {
	return s.queryEntries(ctx, "SELECT "+entryColumns+
		" FROM ledger_entries WHERE epoch_day > ? ORDER BY epoch_day ASC", int64(d))
}

// Entries returns the whole ledger.
func (s *Store) Entries(ctx context.Context, desc bool) ([]model.LedgerEntry, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}
	return s.queryEntries(ctx, "SELECT "+entryColumns+" FROM ledger_entries ORDER BY epoch_day "+order)
}

// UpsertEntries inserts or replaces entries by date in one transaction.
func (s *Store) UpsertEntries(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger_entries (epoch_day, exercised, balance_after)
			VALUES (?, ?, ?)
			ON CONFLICT(epoch_day) DO UPDATE SET
				exercised = excluded.exercised,
				balance_after = excluded.balance_after`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, en := range entries {
			if _, err := stmt.ExecContext(ctx, int64(en.Date), boolInt(en.Exercised), money(en.BalanceAfter)); err != nil {
				return fmt.Errorf("upserting %s: %w", en.Date, err)
			}
		}
		return nil
	})
}

// WorkoutCount returns the number of exercised days.
func (s *Store) WorkoutCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledger_entries WHERE exercised = 1").Scan(&n)
	return n, err
}

// EntryCount returns the number of logged days.
func (s *Store) EntryCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledger_entries").Scan(&n)
	return n, err
}
