// Package tui provides the interactive Bubble Tea dashboard for oink.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/bank"
	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/stats"
	"github.com/stephencockerill/oink/internal/tui/components"
	"github.com/stephencockerill/oink/internal/tui/theme"
)

// Bank is the slice of bank.Service the dashboard drives.
type Bank interface {
	Refresh(ctx context.Context) (bank.Snapshot, error)
	RecordToday(ctx context.Context, exercised bool) (model.LedgerEntry, error)
	AcquireFreeze(ctx context.Context) (int, error)
	UseFreeze(ctx context.Context, date model.Date) (decimal.Decimal, error)
	SetRewardRate(ctx context.Context, rate decimal.Decimal) error
	History(ctx context.Context) (bank.History, error)
	CashOuts(ctx context.Context) ([]model.Deduction, error)
	Subscribe() (int, <-chan bank.Snapshot)
	Unsubscribe(id int)
}

// snapshotMsg carries a snapshot published by the bank.
type snapshotMsg struct {
	snap bank.Snapshot
}

// detailsMsg carries the history and cash-outs behind the tabs.
type detailsMsg struct {
	history  bank.History
	cashOuts []model.Deduction
	err      error
}

// actionMsg reports the outcome of a key-triggered mutation.
type actionMsg struct {
	text string
	err  error
}

// setupSavedMsg is sent once the wizard answers are persisted.
type setupSavedMsg struct {
	text string
	err  error
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	historyDays      = 30
	actionTimeout    = 10 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	svc   Bank
	cfg   config.Config
	keys  keyMap
	help  help.Model
	subID int
	sub   <-chan bank.Snapshot

	// Data
	snap     bank.Snapshot
	loaded   bool
	history  bank.History
	days     []stats.Day
	summary  stats.Summary
	cashOuts []model.Deduction
	updated  time.Time

	// UI state
	width     int
	height    int
	activeTab int
	scroll    int
	showHelp  bool
	busy      bool
	flash     string
	flashErr  bool
	spinner   spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

// NewApp creates the dashboard over svc. needSetup opens the wizard first.
func NewApp(svc Bank, cfg config.Config, needSetup bool) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Pig)

	subID, sub := svc.Subscribe()
	vals := SetupValuesFrom(cfg)

	a := App{
		svc:       svc,
		cfg:       cfg,
		keys:      newKeyMap(),
		help:      help.New(),
		subID:     subID,
		sub:       sub,
		spinner:   sp,
		setupVals: &vals,
		needSetup: needSetup,
	}
	if needSetup {
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Close releases the bank subscription.
func (a App) Close() {
	a.svc.Unsubscribe(a.subID)
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		waitForSnapshot(a.sub),
		refreshCmd(a.svc),
		a.spinner.Tick,
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case snapshotMsg:
		a.snap = msg.snap
		a.loaded = true
		a.updated = msg.snap.At
		return a, tea.Batch(waitForSnapshot(a.sub), detailsCmd(a.svc))

	case detailsMsg:
		if msg.err != nil {
			a.setFlash(msg.err)
			return a, nil
		}
		a.history = msg.history
		a.cashOuts = msg.cashOuts
		since, until := stats.Range(a.snap.Today, historyDays)
		a.days = stats.Daily(msg.history.Entries, msg.history.Frozen, since, until)
		a.summary = stats.Summarize(msg.history.Entries, msg.history.Frozen)
		return a, nil

	case actionMsg:
		a.busy = false
		if msg.err != nil {
			a.setFlash(msg.err)
		} else {
			a.flash, a.flashErr = msg.text, false
		}
		return a, nil

	case setupSavedMsg:
		if msg.err != nil {
			a.setFlash(msg.err)
		} else {
			a.flash, a.flashErr = msg.text, false
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if a.setupForm != nil || a.showHelp {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.switchTab(tab)
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		return a.updateKeys(msg)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		a.showHelp = false
		a.help.ShowAll = false
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		a.help.ShowAll = true
		return a, nil
	case key.Matches(msg, a.keys.NextTab):
		a.switchTab((a.activeTab + 1) % len(components.Tabs))
		return a, nil
	case key.Matches(msg, a.keys.PrevTab):
		a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		return a, nil
	case key.Matches(msg, a.keys.Down):
		a.scroll++
		return a, nil
	case key.Matches(msg, a.keys.Up):
		if a.scroll > 0 {
			a.scroll--
		}
		return a, nil
	}

	if tab := components.TabIdxByKey(msg.String()); tab >= 0 {
		a.switchTab(tab)
		return a, nil
	}

	if !a.loaded || a.busy {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Exercise):
		return a.startAction(recordCmd(a.svc, true))
	case key.Matches(msg, a.keys.Rest):
		return a.startAction(recordCmd(a.svc, false))
	case key.Matches(msg, a.keys.GetFreeze):
		return a.startAction(acquireFreezeCmd(a.svc, a.snap.MaxFreezes))
	case key.Matches(msg, a.keys.UseFreeze):
		if a.snap.MissedDayForFreeze == nil {
			a.flash, a.flashErr = "Nothing to freeze in the last week", true
			return a, nil
		}
		return a.startAction(useFreezeCmd(a.svc, *a.snap.MissedDayForFreeze))
	case key.Matches(msg, a.keys.Refresh):
		a.flash = ""
		return a, refreshCmd(a.svc)
	}
	return a, nil
}

func (a App) startAction(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	a.busy = true
	a.flash = ""
	return a, tea.Batch(cmd, a.spinner.Tick)
}

func (a *App) switchTab(tab int) {
	if tab != a.activeTab {
		a.activeTab = tab
		a.scroll = 0
	}
}

func (a *App) setFlash(err error) {
	a.flashErr = true
	if ve, ok := model.IsValidation(err); ok {
		a.flash = ve.Message
		return
	}
	a.flash = err.Error()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		a.needSetup = false
		theme.SetActive(a.setupVals.Theme)
		cli.ApplyTheme()
		return a, saveSetupCmd(a.svc, a.cfg, *a.setupVals)
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  oink needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) viewLoading() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.Pig).Bold(true).Render("🐷 oink")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" · counting coins")
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 4).
		Render(logo + sub + "\n\n" + a.spinner.View() + " Loading")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewHelp() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.Pig).Bold(true).Render("Keyboard Shortcuts")
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Render("Press any key to close")
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(title + "\n\n" + a.help.View(a.keys) + "\n\n" + dim)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	status := "updated " + a.updated.Local().Format("15:04")
	if a.busy {
		status = a.spinner.View() + " saving"
	}
	statusBar := components.RenderStatusBar(w, a.help.ShortHelpView(a.keys.ShortHelp()), status, a.flash, a.flashErr)

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 5 {
		contentH = 5
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderPiggyTab(cw)
	case 1:
		content = a.renderHistoryTab(cw)
	case 2:
		content = a.renderRewardsTab(cw)
	case 3:
		content = a.renderFreezesTab(cw)
	}
	content = padHeight(truncateHeight(scrollLines(content, a.scroll), contentH), contentH)
	content = lipgloss.PlaceHorizontal(w, lipgloss.Center, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// ─── Commands ───────────────────────────────────────────────────

// waitForSnapshot blocks until the bank publishes the next snapshot.
func waitForSnapshot(sub <-chan bank.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

// refreshCmd asks the bank to republish; the snapshot arrives through the
// subscription.
func refreshCmd(svc Bank) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if _, err := svc.Refresh(ctx); err != nil {
			return actionMsg{err: fmt.Errorf("refreshing: %w", err)}
		}
		return nil
	}
}

func detailsCmd(svc Bank) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		h, err := svc.History(ctx)
		if err != nil {
			return detailsMsg{err: err}
		}
		cs, err := svc.CashOuts(ctx)
		if err != nil {
			return detailsMsg{err: err}
		}
		return detailsMsg{history: h, cashOuts: cs}
	}
}

func recordCmd(svc Bank, exercised bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if _, err := svc.RecordToday(ctx, exercised); err != nil {
			return actionMsg{err: err}
		}
		if exercised {
			return actionMsg{text: "💪 Oink! Today's workout is in the bank"}
		}
		return actionMsg{text: "😴 Rest day logged"}
	}
}

func acquireFreezeCmd(svc Bank, max int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		n, err := svc.AcquireFreeze(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("🧊 Freeze acquired (%d/%d)", n, max)}
	}
}

func useFreezeCmd(svc Bank, date model.Date) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		cost, err := svc.UseFreeze(ctx, date)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("🧊 Froze %s for %s", date, cli.FormatMoney(cost))}
	}
}

// saveSetupCmd persists the wizard answers and applies the reward rate.
func saveSetupCmd(svc Bank, cfg config.Config, vals SetupValues) tea.Cmd {
	return func() tea.Msg {
		prevMax := cfg.Freezes.Max
		rate, err := vals.Apply(&cfg)
		if err != nil {
			return setupSavedMsg{err: err}
		}
		if err := config.Save(cfg); err != nil {
			return setupSavedMsg{err: fmt.Errorf("saving config: %w", err)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := svc.SetRewardRate(ctx, rate); err != nil {
			return setupSavedMsg{err: err}
		}
		if cfg.Freezes.Max != prevMax {
			return setupSavedMsg{text: "Saved. The new freeze cap applies next launch."}
		}
		return setupSavedMsg{text: "Saved to " + config.ConfigPath()}
	}
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow RenderTabBar: tabs separated by one column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func scrollLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if n >= len(lines) {
		n = len(lines) - 1
	}
	return strings.Join(lines[n:], "\n")
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
