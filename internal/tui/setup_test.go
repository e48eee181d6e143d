package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/config"
)

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	assert.Equal(t, "5.00", vals.Rate)

	vals.Rate = "$7.255"
	vals.MaxFreezes = 3
	vals.Reminders = true
	vals.ReminderHour = 19
	vals.Theme = "piggy"

	rate, err := vals.Apply(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "7.26", rate.StringFixed(2))
	assert.InDelta(t, 7.26, cfg.General.DefaultRewardRate, 1e-9)
	assert.Equal(t, 3, cfg.Freezes.Max)
	assert.True(t, cfg.Reminders.Enabled)
	assert.Equal(t, 19, cfg.Reminders.Hour)
	assert.Equal(t, "piggy", cfg.Appearance.Theme)
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, validateRate("5"))
	assert.NoError(t, validateRate(" $0.50 "))
	assert.Error(t, validateRate("abc"))
	assert.Error(t, validateRate("0"))
	assert.Error(t, validateRate("0.004"))
	assert.Error(t, validateRate("-1"))
}

func TestNewSetupFormBuilds(t *testing.T) {
	vals := SetupValuesFrom(config.DefaultConfig())
	form := NewSetupForm(&vals)
	require.NotNil(t, form)
}
