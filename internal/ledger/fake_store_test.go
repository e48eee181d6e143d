package ledger

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu      sync.Mutex
	entries map[model.Date]model.LedgerEntry
	writes  int
	// beforeOverride forces EntryBefore to return a specific entry.
	beforeOverride *model.LedgerEntry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[model.Date]model.LedgerEntry)}
}

func (m *memStore) sorted(desc bool) []model.LedgerEntry {
	out := make([]model.LedgerEntry, 0, len(m.entries))
	for _, en := range m.entries {
		out = append(out, en)
	}
	slices.SortFunc(out, func(a, b model.LedgerEntry) int {
		if desc {
			return int(b.Date - a.Date)
		}
		return int(a.Date - b.Date)
	})
	return out
}

func (m *memStore) EntryOn(_ context.Context, d model.Date) (model.LedgerEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	en, ok := m.entries[d]
	return en, ok, nil
}

func (m *memStore) EntryBefore(_ context.Context, d model.Date) (model.LedgerEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeOverride != nil {
		return *m.beforeOverride, true, nil
	}
	for _, en := range m.sorted(true) {
		if en.Date.Before(d) {
			return en, true, nil
		}
	}
	return model.LedgerEntry{}, false, nil
}

func (m *memStore) LatestEntry(_ context.Context) (model.LedgerEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(true)
	if len(all) == 0 {
		return model.LedgerEntry{}, false, nil
	}
	return all[0], true, nil
}

func (m *memStore) EntriesAfter(_ context.Context, d model.Date) ([]model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LedgerEntry
	for _, en := range m.sorted(false) {
		if en.Date.After(d) {
			out = append(out, en)
		}
	}
	return out, nil
}

func (m *memStore) Entries(_ context.Context, desc bool) ([]model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(desc), nil
}

func (m *memStore) UpsertEntries(_ context.Context, entries []model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, en := range entries {
		m.entries[en.Date] = en
		m.writes++
	}
	return nil
}

func (m *memStore) WorkoutCount(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, en := range m.entries {
		if en.Exercised {
			n++
		}
	}
	return n, nil
}

// fixedRate is a mutable RateSource.
type fixedRate struct {
	rate decimal.Decimal
}

func (f *fixedRate) RewardRate(context.Context) (decimal.Decimal, error) {
	return f.rate, nil
}
