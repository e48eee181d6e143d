package cmd

import (
	"strings"

	"github.com/stephencockerill/oink/internal/model"
)

// parseDay accepts "today", "yesterday" or YYYY-MM-DD.
func parseDay(s string, today model.Date) (model.Date, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return 0, model.Invalid(model.CodeInvalidDate, "invalid date %q (want YYYY-MM-DD, today or yesterday)", s)
	}
	return d, nil
}

// parseDays expands arguments into dates. "A..B" is an inclusive range.
func parseDays(args []string, today model.Date) ([]model.Date, error) {
	var out []model.Date
	for _, arg := range args {
		from, to, isRange := strings.Cut(arg, "..")
		if !isRange {
			d, err := parseDay(arg, today)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
			continue
		}
		start, err := parseDay(from, today)
		if err != nil {
			return nil, err
		}
		end, err := parseDay(to, today)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, model.Invalid(model.CodeInvalidDate, "range %s ends before it starts", arg)
		}
		for d := start; !d.After(end); d = d.AddDays(1) {
			out = append(out, d)
		}
	}
	return out, nil
}
