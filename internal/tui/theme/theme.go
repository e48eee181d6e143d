// Package theme defines color themes for oink's terminal output.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color roles used by the CLI and dashboard.
type Theme struct {
	Name         string
	Surface      lipgloss.Color // Card/panel backgrounds
	Border       lipgloss.Color // Subtle borders
	BorderAccent lipgloss.Color // Focused card borders
	TextDim      lipgloss.Color // Hints, disabled
	TextMuted    lipgloss.Color // Labels, metadata
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	Pig          lipgloss.Color // Balance and the pig himself
	Money        lipgloss.Color // Gains
	Loss         lipgloss.Color // Misses, cash-outs
	Warn         lipgloss.Color
	Ice          lipgloss.Color // Freezes
	Flame        lipgloss.Color // Streaks
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Surface:      lipgloss.Color("#1C1B1A"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	Pig:          lipgloss.Color("#CE5D97"),
	Money:        lipgloss.Color("#879A39"),
	Loss:         lipgloss.Color("#D14D41"),
	Warn:         lipgloss.Color("#DA702C"),
	Ice:          lipgloss.Color("#4385BE"),
	Flame:        lipgloss.Color("#D0A215"),
}

// Piggy is a pink pastel theme.
var Piggy = Theme{
	Name:         "piggy",
	Surface:      lipgloss.Color("#2A1E26"),
	Border:       lipgloss.Color("#5C4452"),
	BorderAccent: lipgloss.Color("#F5A9C8"),
	TextDim:      lipgloss.Color("#7A6370"),
	TextMuted:    lipgloss.Color("#C4A7B6"),
	TextPrimary:  lipgloss.Color("#FBEAF2"),
	Accent:       lipgloss.Color("#F5A9C8"),
	Pig:          lipgloss.Color("#FF8FC1"),
	Money:        lipgloss.Color("#A6E3A1"),
	Loss:         lipgloss.Color("#F38BA8"),
	Warn:         lipgloss.Color("#FAB387"),
	Ice:          lipgloss.Color("#89DCEB"),
	Flame:        lipgloss.Color("#F9E2AF"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Surface:      lipgloss.Color("0"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	Pig:          lipgloss.Color("13"),
	Money:        lipgloss.Color("2"),
	Loss:         lipgloss.Color("1"),
	Warn:         lipgloss.Color("3"),
	Ice:          lipgloss.Color("12"),
	Flame:        lipgloss.Color("11"),
}

// All available themes.
var All = []Theme{FlexokiDark, Piggy, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name. Terminals without true color
// fall back to the ANSI theme.
func SetActive(name string) {
	Active = ForProfile(ByName(name), termenv.ColorProfile())
}

// ForProfile downgrades t when the terminal profile cannot show it.
func ForProfile(t Theme, p termenv.Profile) Theme {
	if p == termenv.ANSI || p == termenv.Ascii {
		return Terminal
	}
	return t
}
