package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/stephencockerill/oink/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"0.63", "$0.63"},
		{"12.5", "$12.50"},
		{"1234.56", "$1,234.56"},
		{"-3", "-$3.00"},
		{"9.999", "$10.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)), tt.in)
	}
	assert.Equal(t, "+$5.00", FormatSignedMoney(decimal.RequireFromString("5")))
	assert.Equal(t, "-$2.50", FormatSignedMoney(decimal.RequireFromString("-2.5")))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,234", FormatNumber(-1234))
}

func TestFormatRelativeDate(t *testing.T) {
	today := model.NewDate(2024, time.June, 15)
	assert.Equal(t, "Today", FormatRelativeDate(today, today))
	assert.Equal(t, "Yesterday", FormatRelativeDate(today.AddDays(-1), today))
	assert.Equal(t, "Thu Jun 13", FormatRelativeDate(today.AddDays(-2), today))
}

func TestStreakTiers(t *testing.T) {
	tests := []struct {
		streak int
		tier   StreakTier
	}{
		{0, TierNone}, {1, TierSpark}, {2, TierSpark}, {3, TierFire}, {6, TierFire},
		{7, TierBlaze}, {13, TierBlaze}, {14, TierInferno}, {29, TierInferno}, {30, TierLegendary},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(tt.streak), "streak %d", tt.streak)
	}
	assert.Equal(t, "0 days", FormatStreak(0))
	assert.Equal(t, "1 day 🔥", FormatStreak(1))
	assert.Equal(t, "30 days 👑🔥👑", FormatStreak(30))
}
