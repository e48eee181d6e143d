// Package backup writes and reads oink's JSONL export format.
//
// A backup is one JSON object per line. The first line is a header, the
// rest carry a top-level "type" naming what they hold:
//
//	{"type":"oink","version":1,"exported_at":"..."}
//	{"type":"settings","reward_rate":"5.00",...}
//	{"type":"entry","date":"2025-03-01","exercised":true,"balance_after":"5.00"}
//	{"type":"deduction","id":"...","label":"Coffee",...}
//	{"type":"frozen","date":"2025-02-27","cost":"10.00","frozen_at":"..."}
package backup

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/model"
)

// Version is the format version written by Write.
const Version = 1

// Line types.
const (
	TypeHeader    = "oink"
	TypeSettings  = "settings"
	TypeEntry     = "entry"
	TypeDeduction = "deduction"
	TypeFrozen    = "frozen"
)

var (
	// ErrNoHeader means the input does not start like an oink backup.
	ErrNoHeader = errors.New("not an oink backup")
	// ErrNoSettings means the backup has no settings line.
	ErrNoSettings = errors.New("backup has no settings line")
)

type headerLine struct {
	Type       string    `json:"type"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
}

type settingsLine struct {
	Type                string          `json:"type"`
	RewardRate          decimal.Decimal `json:"reward_rate"`
	AvailableFreezes    int             `json:"available_freezes"`
	TotalFreezeSpending decimal.Decimal `json:"total_freeze_spending"`
}

type entryLine struct {
	Type string `json:"type"`
	model.LedgerEntry
}

type deductionLine struct {
	Type string `json:"type"`
	model.Deduction
}

type frozenLine struct {
	Type string `json:"type"`
	model.FrozenDay
}

// Write encodes a as JSONL. Entries and frozen days go out oldest first.
func Write(w io.Writer, a model.Archive, exportedAt time.Time) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(headerLine{Type: TypeHeader, Version: Version, ExportedAt: exportedAt.UTC()}); err != nil {
		return err
	}
	if err := enc.Encode(settingsLine{
		Type:                TypeSettings,
		RewardRate:          a.Settings.RewardRate,
		AvailableFreezes:    a.Settings.AvailableFreezes,
		TotalFreezeSpending: a.Settings.TotalFreezeSpending,
	}); err != nil {
		return err
	}

	entries := slices.Clone(a.Entries)
	slices.SortFunc(entries, func(x, y model.LedgerEntry) int { return cmp.Compare(x.Date, y.Date) })
	for _, en := range entries {
		if err := enc.Encode(entryLine{Type: TypeEntry, LedgerEntry: en}); err != nil {
			return fmt.Errorf("encoding %s: %w", en.Date, err)
		}
	}
	for _, d := range a.Deductions {
		if err := enc.Encode(deductionLine{Type: TypeDeduction, Deduction: d}); err != nil {
			return fmt.Errorf("encoding deduction %s: %w", d.ID, err)
		}
	}

	frozen := slices.Clone(a.Frozen)
	slices.SortFunc(frozen, func(x, y model.FrozenDay) int { return cmp.Compare(x.Date, y.Date) })
	for _, fd := range frozen {
		if err := enc.Encode(frozenLine{Type: TypeFrozen, FrozenDay: fd}); err != nil {
			return fmt.Errorf("encoding freeze %s: %w", fd.Date, err)
		}
	}
	return bw.Flush()
}

// ReadResult holds the output of reading a backup.
type ReadResult struct {
	Archive     model.Archive
	Version     int
	ExportedAt  time.Time
	ParseErrors int
	Err         error
}

// Read decodes a backup. Entries and frozen days are deduplicated by date
// and deductions by id, keeping the last line seen for each. Lines that
// fail to decode are counted and skipped; lines of unknown type are
// ignored.
func Read(r io.Reader) ReadResult {
	var (
		res         ReadResult
		sawHeader   bool
		sawSettings bool
		parseErrors int
	)
	entries := make(map[model.Date]model.LedgerEntry)
	deductions := make(map[string]model.Deduction)
	frozen := make(map[model.Date]model.FrozenDay)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		lineType := extractTopLevelType(line)
		if !sawHeader {
			if lineType != TypeHeader {
				return ReadResult{Err: ErrNoHeader}
			}
			var h headerLine
			if err := json.Unmarshal(line, &h); err != nil {
				return ReadResult{Err: fmt.Errorf("%w: %v", ErrNoHeader, err)}
			}
			if h.Version < 1 || h.Version > Version {
				return ReadResult{Err: fmt.Errorf("unsupported backup version %d", h.Version)}
			}
			res.Version = h.Version
			res.ExportedAt = h.ExportedAt
			sawHeader = true
			continue
		}

		switch lineType {
		case TypeSettings:
			var s settingsLine
			if err := json.Unmarshal(line, &s); err != nil {
				parseErrors++
				continue
			}
			res.Archive.Settings = model.Settings{
				RewardRate:          s.RewardRate,
				AvailableFreezes:    s.AvailableFreezes,
				TotalFreezeSpending: s.TotalFreezeSpending,
			}
			sawSettings = true

		case TypeEntry:
			var e entryLine
			if err := json.Unmarshal(line, &e); err != nil {
				parseErrors++
				continue
			}
			entries[e.Date] = e.LedgerEntry

		case TypeDeduction:
			var d deductionLine
			if err := json.Unmarshal(line, &d); err != nil || d.ID == "" {
				parseErrors++
				continue
			}
			deductions[d.ID] = d.Deduction

		case TypeFrozen:
			var f frozenLine
			if err := json.Unmarshal(line, &f); err != nil {
				parseErrors++
				continue
			}
			frozen[f.Date] = f.FrozenDay

		case "":
			parseErrors++
		}
	}

	if err := scanner.Err(); err != nil {
		return ReadResult{Err: err}
	}
	if !sawHeader {
		return ReadResult{Err: ErrNoHeader}
	}
	if !sawSettings {
		return ReadResult{Err: ErrNoSettings}
	}

	a := &res.Archive
	for _, en := range entries {
		a.Entries = append(a.Entries, en)
	}
	slices.SortFunc(a.Entries, func(x, y model.LedgerEntry) int { return cmp.Compare(x.Date, y.Date) })

	for _, d := range deductions {
		a.Deductions = append(a.Deductions, d)
	}
	slices.SortFunc(a.Deductions, func(x, y model.Deduction) int { return y.CreatedAt.Compare(x.CreatedAt) })

	for _, fd := range frozen {
		a.Frozen = append(a.Frozen, fd)
		a.Settings.FrozenDates = append(a.Settings.FrozenDates, fd.Date)
	}
	slices.SortFunc(a.Frozen, func(x, y model.FrozenDay) int { return cmp.Compare(x.Date, y.Date) })
	slices.Sort(a.Settings.FrozenDates)

	res.ParseErrors = parseErrors
	return res
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
// Returns "" when there is no such field, "?" when the value is not one of
// the known line types.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value, not a key.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "?", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "?", true
	}
	v := string(line[i : i+end])
	switch v {
	case TypeHeader, TypeSettings, TypeEntry, TypeDeduction, TypeFrozen:
		return v, true
	}
	return "?", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
