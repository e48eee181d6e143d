package balance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/model"
)

type fakeStore struct {
	latest     *model.LedgerEntry
	deductions decimal.Decimal
	spending   decimal.Decimal
}

func (f fakeStore) LatestEntry(context.Context) (model.LedgerEntry, bool, error) {
	if f.latest == nil {
		return model.LedgerEntry{}, false, nil
	}
	return *f.latest, true, nil
}

func (f fakeStore) DeductionTotal(context.Context) (decimal.Decimal, error) {
	return f.deductions, nil
}

func (f fakeStore) FreezeState(context.Context) (model.FreezeState, error) {
	return model.FreezeState{TotalSpending: f.spending}, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestActual(t *testing.T) {
	tests := []struct {
		name  string
		store fakeStore
		want  string
	}{
		{name: "empty", store: fakeStore{}, want: "0.00"},
		{
			name:  "ledger only",
			store: fakeStore{latest: &model.LedgerEntry{BalanceAfter: d("5.00")}},
			want:  "5.00",
		},
		{
			name:  "cash-out subtracted",
			store: fakeStore{latest: &model.LedgerEntry{BalanceAfter: d("5.00")}, deductions: d("2.00")},
			want:  "3.00",
		},
		{
			name: "freeze spending subtracted",
			store: fakeStore{
				latest: &model.LedgerEntry{BalanceAfter: d("25.00")}, deductions: d("2.50"), spending: d("10.00"),
			},
			want: "12.50",
		},
		{
			name:  "floored at zero",
			store: fakeStore{latest: &model.LedgerEntry{BalanceAfter: d("2.50")}, deductions: d("5.00")},
			want:  "0.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewProjector(tt.store).Actual(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestBreakdownAndAfterDeduction(t *testing.T) {
	p := NewProjector(fakeStore{latest: &model.LedgerEntry{BalanceAfter: d("10.00")}, spending: d("4.00")})

	b, err := p.Breakdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.00", b.Ledger.StringFixed(2))
	assert.Equal(t, "4.00", b.FreezeSpending.StringFixed(2))
	assert.Equal(t, "6.00", b.Actual.StringFixed(2))

	after, err := p.AfterDeduction(context.Background(), d("2.25"))
	require.NoError(t, err)
	assert.Equal(t, "3.75", after.StringFixed(2))
}
