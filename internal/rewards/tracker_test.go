package rewards_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/balance"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/rewards"
	"github.com/stephencockerill/oink/internal/store"
)

var now = time.Date(2024, time.June, 15, 9, 30, 0, 0, time.Local)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T, ledgerBalance string) (*rewards.Tracker, *balance.Projector, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "oink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureSettings(ctx, d("5.00")))
	if ledgerBalance != "" {
		require.NoError(t, st.UpsertEntries(ctx, []model.LedgerEntry{
			{Date: model.DateOf(now), Exercised: true, BalanceAfter: d(ledgerBalance)},
		}))
	}
	proj := balance.NewProjector(st)
	return rewards.NewTracker(st, proj, st, model.FixedClock(now), zerolog.Nop()), proj, st
}

func TestCreateAndDeleteRestoresBalance(t *testing.T) {
	ctx := context.Background()
	tr, proj, _ := setup(t, "5.00")

	ded, err := tr.Create(ctx, "Coffee", d("2.00"), "")
	require.NoError(t, err)
	assert.NotEmpty(t, ded.ID)
	assert.Equal(t, model.DefaultEmoji, ded.Emoji)
	assert.Equal(t, "5.00", ded.BalanceBefore.StringFixed(2))
	assert.Equal(t, "3.00", ded.BalanceAfter.StringFixed(2))
	assert.Equal(t, "5.00", ded.RewardRateAtCreation.StringFixed(2))
	assert.True(t, ded.CreatedAt.Equal(now))

	actual, err := proj.Actual(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.00", actual.StringFixed(2))

	require.NoError(t, tr.Delete(ctx, ded.ID))
	actual, err = proj.Actual(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5.00", actual.StringFixed(2))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		amount string
		code   string
	}{
		{name: "blank label", label: "   ", amount: "1", code: model.CodeBlankLabel},
		{name: "zero amount", label: "Tea", amount: "0", code: model.CodeNonPositiveAmount},
		{name: "negative amount", label: "Tea", amount: "-3", code: model.CodeNonPositiveAmount},
		{name: "rounds to zero", label: "Tea", amount: "0.004", code: model.CodeNonPositiveAmount},
		{name: "more than available", label: "Tea", amount: "5.01", code: model.CodeInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, _ := setup(t, "5.00")
			_, err := tr.Create(context.Background(), tt.label, d(tt.amount), "")
			ve, ok := model.IsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.code, ve.Code)

			n, err := tr.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCreateWholeBalance(t *testing.T) {
	tr, proj, _ := setup(t, "5.00")
	_, err := tr.Create(context.Background(), "Everything", d("5.00"), "🍕")
	require.NoError(t, err)
	actual, err := proj.Actual(context.Background())
	require.NoError(t, err)
	assert.True(t, actual.IsZero())
}

func TestUpdateUsesFreedAmount(t *testing.T) {
	ctx := context.Background()
	tr, proj, _ := setup(t, "10.00")

	ded, err := tr.Create(ctx, "Book", d("6.00"), "📚")
	require.NoError(t, err)

	// 4.00 available plus the 6.00 being replaced.
	updated, err := tr.Update(ctx, ded.ID, "Two books", d("10.00"), "")
	require.NoError(t, err)
	assert.Equal(t, "Two books", updated.Label)
	assert.Equal(t, "📚", updated.Emoji)

	_, err = tr.Update(ctx, ded.ID, "Three books", d("10.01"), "")
	ve, ok := model.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeInsufficientBalance, ve.Code)

	actual, err := proj.Actual(ctx)
	require.NoError(t, err)
	assert.True(t, actual.IsZero())
}

func TestUnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := setup(t, "5.00")

	_, err := tr.Update(ctx, "nope", "x", d("1"), "")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, ok := model.IsValidation(err)
	assert.False(t, ok)

	assert.ErrorIs(t, tr.Delete(ctx, "nope"), model.ErrNotFound)
}

func TestProjectionIsOrderInvariant(t *testing.T) {
	ctx := context.Background()

	run := func(order []string) string {
		tr, proj, _ := setup(t, "50.00")
		ids := map[string]string{}
		for _, step := range order {
			switch step {
			case "a", "b", "c":
				ded, err := tr.Create(ctx, step, d("3.33"), "")
				require.NoError(t, err)
				ids[step] = ded.ID
			case "-b":
				require.NoError(t, tr.Delete(ctx, ids["b"]))
			case "~a":
				_, err := tr.Update(ctx, ids["a"], "a", d("7.10"), "")
				require.NoError(t, err)
			}
		}
		actual, err := proj.Actual(ctx)
		require.NoError(t, err)
		return actual.StringFixed(2)
	}

	first := run([]string{"a", "b", "c", "-b", "~a"})
	second := run([]string{"b", "a", "~a", "c", "-b"})
	assert.Equal(t, first, second)
	assert.Equal(t, "39.57", first)
}

func TestTotalWorkoutsRewarded(t *testing.T) {
	ctx := context.Background()
	tr, _, st := setup(t, "100.00")

	_, err := tr.Create(ctx, "Shoes", d("12.00"), "")
	require.NoError(t, err)
	require.NoError(t, st.SetRewardRate(ctx, d("2.00")))
	_, err = tr.Create(ctx, "Socks", d("5.00"), "")
	require.NoError(t, err)

	// floor(12/5) + floor(5/2)
	n, err := tr.TotalWorkoutsRewarded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	total, err := tr.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, "17.00", total.StringFixed(2))
}
