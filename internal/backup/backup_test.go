package backup

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleArchive() model.Archive {
	at := time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC)
	return model.Archive{
		Settings: model.Settings{
			RewardRate:          dec("5.00"),
			AvailableFreezes:    1,
			FrozenDates:         []model.Date{model.NewDate(2025, 2, 27)},
			TotalFreezeSpending: dec("10.00"),
		},
		Entries: []model.LedgerEntry{
			{Date: model.NewDate(2025, 3, 1), Exercised: false, BalanceAfter: dec("2.50")},
			{Date: model.NewDate(2025, 2, 28), Exercised: true, BalanceAfter: dec("5.00")},
		},
		Deductions: []model.Deduction{{
			ID: "3f0c", Label: "Coffee", Emoji: "☕", Amount: dec("2.00"), CreatedAt: at,
			BalanceBefore: dec("2.50"), BalanceAfter: dec("0.50"), RewardRateAtCreation: dec("5.00"),
		}},
		Frozen: []model.FrozenDay{{Date: model.NewDate(2025, 2, 27), Cost: dec("10.00"), FrozenAt: at}},
	}
}

func read(t *testing.T, lines ...string) ReadResult {
	t.Helper()
	return Read(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

const header = `{"type":"oink","version":1,"exported_at":"2025-03-02T18:30:00Z"}`

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	exported := time.Date(2025, 3, 2, 20, 0, 0, 0, time.UTC)
	require.NoError(t, Write(&buf, sampleArchive(), exported))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, TypeHeader, extractTopLevelType([]byte(lines[0])))
	assert.Contains(t, lines[2], `"date":"2025-02-28"`, "entries are written oldest first")
	assert.Contains(t, lines[4], `"emoji":"☕"`)

	res := Read(&buf)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Version)
	assert.True(t, res.ExportedAt.Equal(exported))
	assert.Zero(t, res.ParseErrors)

	a := res.Archive
	assert.Equal(t, "5.00", a.Settings.RewardRate.StringFixed(2))
	assert.Equal(t, 1, a.Settings.AvailableFreezes)
	assert.Equal(t, []model.Date{model.NewDate(2025, 2, 27)}, a.Settings.FrozenDates)
	require.Len(t, a.Entries, 2)
	assert.Equal(t, model.NewDate(2025, 2, 28), a.Entries[0].Date)
	assert.True(t, a.Entries[0].Exercised)
	assert.Equal(t, "2.50", a.Entries[1].BalanceAfter.StringFixed(2))
	require.Len(t, a.Deductions, 1)
	assert.Equal(t, "Coffee", a.Deductions[0].Label)
	assert.Equal(t, 0, a.Deductions[0].WorkoutsRepresented())
	require.Len(t, a.Frozen, 1)
	assert.Equal(t, "10.00", a.Frozen[0].Cost.StringFixed(2))
}

func TestRead_DedupLastWins(t *testing.T) {
	res := read(t,
		header,
		`{"type":"settings","reward_rate":"5.00","available_freezes":0,"total_freeze_spending":"0.00"}`,
		`{"type":"entry","date":"2025-03-01","exercised":true,"balance_after":"5.00"}`,
		`{"type":"entry","date":"2025-03-01","exercised":false,"balance_after":"0.00"}`,
		`{"type":"settings","reward_rate":"7.50","available_freezes":2,"total_freeze_spending":"0.00"}`,
	)
	require.NoError(t, res.Err)

	require.Len(t, res.Archive.Entries, 1)
	assert.False(t, res.Archive.Entries[0].Exercised, "last line for a date wins")
	assert.Equal(t, "7.50", res.Archive.Settings.RewardRate.StringFixed(2))
	assert.Equal(t, 2, res.Archive.Settings.AvailableFreezes)
}

func TestRead_MalformedLines(t *testing.T) {
	res := read(t,
		header,
		`not json at all`,
		`{"type":"settings","reward_rate":"5.00","available_freezes":0,"total_freeze_spending":"0.00"}`,
		`{"type":"entry","broken json`,
		`{"type":"entry","date":"2025-03-01","exercised":true,"balance_after":"5.00"}`,
		`{"type":"deduction","label":"no id"}`,
		`{"type":"progress","data":{}}`,
		``,
	)
	require.NoError(t, res.Err)
	// Malformed lines should be skipped, not cause a fatal error.
	assert.Equal(t, 3, res.ParseErrors)
	assert.Len(t, res.Archive.Entries, 1)
	assert.Empty(t, res.Archive.Deductions)
}

func TestRead_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"empty", nil, ErrNoHeader.Error()},
		{"no header", []string{`{"type":"entry","date":"2025-03-01","exercised":true,"balance_after":"5.00"}`}, ErrNoHeader.Error()},
		{"future version", []string{`{"type":"oink","version":9}`}, "unsupported backup version 9"},
		{"no settings", []string{header}, ErrNoSettings.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := read(t, tt.lines...)
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), tt.want)
		})
	}
}

func TestExtractTopLevelType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"header", `{"type":"oink","version":1}`, TypeHeader},
		{"entry", `{"type":"entry","date":"2025-03-01"}`, TypeEntry},
		{"spaced", `{"type": "frozen","cost":"10.00"}`, TypeFrozen},
		{"nested type ignored", `{"data":{"type":"progress"},"type":"deduction"}`, TypeDeduction},
		{"type as value", `{"label":"type","type":"settings"}`, TypeSettings},
		{"unknown type", `{"type":"progress","data":{}}`, "?"},
		{"non-string type", `{"type":null}`, "?"},
		{"no type field", `{"message":"hello"}`, ""},
		{"empty", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTopLevelType([]byte(tt.input)))
		})
	}
}

// FuzzExtractTopLevelType checks the byte-level scanner never panics on
// arbitrary input, since backups are hand-editable files.
func FuzzExtractTopLevelType(f *testing.F) {
	f.Add([]byte(header))
	f.Add([]byte(`{"type":"entry","date":"2025-03-01","exercised":true}`))
	f.Add([]byte(`{"data":{"type":"nested"},"type":"frozen"}`))
	f.Add([]byte(`not json`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"type":null}`))
	f.Add([]byte(`{"type":123}`))
	f.Add([]byte(``))
	f.Add([]byte(`{"type":"entry`))
	f.Add([]byte(`{"a":"\`))

	f.Fuzz(func(t *testing.T, data []byte) {
		switch got := extractTopLevelType(data); got {
		case "", "?", TypeHeader, TypeSettings, TypeEntry, TypeDeduction, TypeFrozen:
		default:
			t.Errorf("extractTopLevelType returned unexpected %q", got)
		}
	})
}
