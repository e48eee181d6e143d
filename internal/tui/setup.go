package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/money"
	"github.com/stephencockerill/oink/internal/tui/theme"
)

// SetupValues are the answers collected by the setup wizard.
type SetupValues struct {
	Rate         string
	MaxFreezes   int
	Reminders    bool
	ReminderHour int
	Theme        string
}

// SetupValuesFrom seeds the wizard with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Rate:         cfg.RewardRate().StringFixed(2),
		MaxFreezes:   cfg.Freezes.Max,
		Reminders:    cfg.Reminders.Enabled,
		ReminderHour: cfg.Reminders.Hour,
		Theme:        cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the first-run wizard over v.
func NewSetupForm(v *SetupValues) *huh.Form {
	freezeOpts := make([]huh.Option[int], 0, 5)
	for n := 1; n <= 5; n++ {
		freezeOpts = append(freezeOpts, huh.NewOption(fmt.Sprintf("%d", n), n))
	}
	hourOpts := make([]huh.Option[int], 0, 24)
	for h := 6; h <= 23; h++ {
		hourOpts = append(hourOpts, huh.NewOption(fmt.Sprintf("%02d:00", h), h))
	}
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to oink! 🐷").
				Description("Every workout feeds the pig.\nEvery missed day halves what's inside."),
			huh.NewInput().
				Title("Reward per workout").
				Prompt("$ ").
				Value(&v.Rate).
				Validate(validateRate),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Streak freezes you can hold").
				Options(freezeOpts...).
				Value(&v.MaxFreezes),
			huh.NewConfirm().
				Title("Daily reminder?").
				Value(&v.Reminders),
			huh.NewSelect[int]().
				Title("Remind me at").
				Options(hourOpts...).
				Value(&v.ReminderHour),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	)
}

func validateRate(s string) error {
	rate, err := money.Parse(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter an amount like 5.00")
	}
	if !money.Round2(rate).IsPositive() {
		return errors.New("reward must be more than zero")
	}
	return nil
}

// Apply copies the answers into cfg and returns the parsed reward rate.
func (v SetupValues) Apply(cfg *config.Config) (decimal.Decimal, error) {
	if err := validateRate(v.Rate); err != nil {
		return decimal.Zero, err
	}
	rate, _ := money.Parse(strings.TrimSpace(v.Rate))
	rate = money.Round2(rate)

	cfg.General.DefaultRewardRate = rate.InexactFloat64()
	if v.MaxFreezes > 0 {
		cfg.Freezes.Max = v.MaxFreezes
	}
	cfg.Reminders.Enabled = v.Reminders
	cfg.Reminders.Hour = v.ReminderHour
	cfg.Reminders.Minute = 0
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return rate, nil
}
