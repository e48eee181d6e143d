package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stephencockerill/oink/internal/tui/theme"
)

// Tab is one dashboard tab.
type Tab struct {
	Name string
	Key  string // number key that jumps to the tab
}

// Tabs defines all dashboard tabs, in order.
var Tabs = []Tab{
	{Name: "Piggy", Key: "1"},
	{Name: "History", Key: "2"},
	{Name: "Rewards", Key: "3"},
	{Name: "Freezes", Key: "4"},
}

// tabLabel is the visible text of a tab; inactive tabs show their key.
func tabLabel(tab Tab, active bool) string {
	if active {
		return " " + tab.Name + " "
	}
	return " " + tab.Key + ":" + tab.Name + " "
}

// TabVisualWidth returns the rendered width of a tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabLabel(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Pig).
		Bold(true).
		Underline(true)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)
	sepStyle := lipgloss.NewStyle().
		Foreground(t.Border)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tabLabel(tab, true)))
		} else {
			parts = append(parts, inactiveStyle.Render(tabLabel(tab, false)))
		}
	}
	bar := strings.Join(parts, sepStyle.Render("│"))
	return lipgloss.NewStyle().Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a key press, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
