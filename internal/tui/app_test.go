package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/bank"
	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/tui/components"
)

var today = model.NewDate(2024, time.June, 15)

type fakeBank struct {
	ch           chan bank.Snapshot
	recorded     []bool
	acquired     int
	used         []model.Date
	unsubscribed bool
	err          error
}

func newFakeBank() *fakeBank {
	return &fakeBank{ch: make(chan bank.Snapshot, 4)}
}

func (f *fakeBank) Refresh(context.Context) (bank.Snapshot, error) { return bank.Snapshot{}, f.err }

func (f *fakeBank) RecordToday(_ context.Context, exercised bool) (model.LedgerEntry, error) {
	if f.err != nil {
		return model.LedgerEntry{}, f.err
	}
	f.recorded = append(f.recorded, exercised)
	return model.LedgerEntry{Date: today, Exercised: exercised}, nil
}

func (f *fakeBank) AcquireFreeze(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.acquired++
	return f.acquired, nil
}

func (f *fakeBank) UseFreeze(_ context.Context, d model.Date) (decimal.Decimal, error) {
	f.used = append(f.used, d)
	return decimal.NewFromInt(10), nil
}

func (f *fakeBank) SetRewardRate(context.Context, decimal.Decimal) error { return nil }

func (f *fakeBank) History(context.Context) (bank.History, error) {
	return bank.History{Entries: []model.LedgerEntry{
		{Date: today.AddDays(-1), Exercised: true, BalanceAfter: decimal.NewFromInt(5)},
	}}, nil
}

func (f *fakeBank) CashOuts(context.Context) ([]model.Deduction, error) { return nil, nil }

func (f *fakeBank) Subscribe() (int, <-chan bank.Snapshot) { return 1, f.ch }

func (f *fakeBank) Unsubscribe(int) { f.unsubscribed = true }

func loadedApp(t *testing.T, f *fakeBank, snap bank.Snapshot) App {
	t.Helper()
	a := NewApp(f, config.DefaultConfig(), false)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = m.Update(snapshotMsg{snap: snap})
	return m.(App)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func baseSnapshot() bank.Snapshot {
	return bank.Snapshot{
		Today:           today,
		ActualBalance:   decimal.RequireFromString("12.50"),
		Streak:          3,
		MaxFreezes:      2,
		RewardRate:      decimal.NewFromInt(5),
		FreezeCost:      decimal.NewFromInt(10),
		ExercisePreview: decimal.RequireFromString("17.50"),
		MissPreview:     decimal.RequireFromString("6.25"),
	}
}

func TestSnapshotLoadsDashboard(t *testing.T) {
	f := newFakeBank()
	a := loadedApp(t, f, baseSnapshot())
	assert.True(t, a.loaded)

	view := a.View()
	assert.Contains(t, view, "$12.50")
	assert.Contains(t, view, "$17.50")
	assert.Contains(t, view, "$6.25")
}

func TestDetailsFillHistory(t *testing.T) {
	f := newFakeBank()
	a := loadedApp(t, f, baseSnapshot())

	msg := detailsCmd(f)()
	m, _ := a.Update(msg)
	a = m.(App)
	require.Len(t, a.days, historyDays)
	assert.Equal(t, today, a.days[0].Date)
	assert.Equal(t, 1, a.summary.Workouts)
}

func TestExerciseKeyRecordsToday(t *testing.T) {
	f := newFakeBank()
	a := loadedApp(t, f, baseSnapshot())

	m, cmd := a.Update(keyPress("e"))
	a = m.(App)
	require.NotNil(t, cmd)
	assert.True(t, a.busy)

	// Keys are ignored while a write is in flight.
	_, second := a.Update(keyPress("n"))
	assert.Nil(t, second)

	m, _ = a.Update(recordCmd(f, true)())
	a = m.(App)
	assert.Equal(t, []bool{true}, f.recorded)
	assert.False(t, a.busy)
	assert.Contains(t, a.flash, "Oink")
	assert.False(t, a.flashErr)
}

func TestValidationErrorFlashesMessage(t *testing.T) {
	f := newFakeBank()
	f.err = model.Invalid(model.CodeMaxFreezes, "you already hold %d freezes", 2)
	a := loadedApp(t, f, baseSnapshot())

	m, _ := a.Update(acquireFreezeCmd(f, 2)())
	a = m.(App)
	assert.True(t, a.flashErr)
	assert.Equal(t, "you already hold 2 freezes", a.flash)
}

func TestUseFreezeWithoutMissedDay(t *testing.T) {
	f := newFakeBank()
	a := loadedApp(t, f, baseSnapshot())

	m, cmd := a.Update(keyPress("u"))
	a = m.(App)
	assert.Nil(t, cmd)
	assert.True(t, a.flashErr)
	assert.Empty(t, f.used)
}

func TestUseFreezeTargetsMissedDay(t *testing.T) {
	f := newFakeBank()
	snap := baseSnapshot()
	missed := today.AddDays(-2)
	snap.MissedDayForFreeze = &missed
	snap.AvailableFreezes = 1
	a := loadedApp(t, f, snap)

	_, cmd := a.Update(keyPress("u"))
	require.NotNil(t, cmd)
	msg := useFreezeCmd(f, *a.snap.MissedDayForFreeze)()
	assert.Equal(t, []model.Date{missed}, f.used)
	assert.Contains(t, msg.(actionMsg).text, "$10.00")
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t, newFakeBank(), baseSnapshot())

	m, _ := a.Update(keyPress("3"))
	assert.Equal(t, 2, m.(App).activeTab)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, m.(App).activeTab)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.(App).activeTab)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 3, m.(App).activeTab)
	assert.Contains(t, m.View(), "Streak freezes")
}

func TestHelpToggle(t *testing.T) {
	a := loadedApp(t, newFakeBank(), baseSnapshot())
	m, _ := a.Update(keyPress("?"))
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m, _ = m.Update(keyPress("x"))
	assert.NotContains(t, m.View(), "Keyboard Shortcuts")
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			assert.Equal(t, i, a.tabAtX(pos+w/2), "active=%d tab=%d", active, i)
			pos += w + 1
		}
		assert.Equal(t, -1, a.tabAtX(pos+50))
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	f := newFakeBank()
	a := NewApp(f, config.DefaultConfig(), false)
	a.Close()
	assert.True(t, f.unsubscribed)
}

func TestWaitForSnapshot(t *testing.T) {
	f := newFakeBank()
	f.ch <- baseSnapshot()
	msg := waitForSnapshot(f.ch)()
	assert.Equal(t, 3, msg.(snapshotMsg).snap.Streak)

	close(f.ch)
	assert.Nil(t, waitForSnapshot(f.ch)())
}

func TestTooNarrow(t *testing.T) {
	a := NewApp(newFakeBank(), config.DefaultConfig(), false)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, m.View(), "too narrow")
}
