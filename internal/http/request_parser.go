// Package http exposes the analytics service as a JSON API.
//
// This file parses query parameters. Absent parameters take the caller's
// default; present but unparseable ones are invalid-argument errors so the
// client learns about typos instead of silently getting defaults.

package http

import (
	"net/url"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

// MonthParams holds the year and month of a monthly summary request.
// Zero means the parameter was absent and the current value applies.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters. An explicit
// value must be in range; only an absent one falls back to current.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	var p MonthParams
	year, ok, err := parseOptionalIntParam(query, "year")
	if err != nil {
		return MonthParams{}, err
	}
	if ok && (year < 1 || year > 9999) {
		return MonthParams{}, core.InvalidArgument("year must be between 1 and 9999, got %d", year)
	}
	p.Year = year

	month, ok, err := parseOptionalIntParam(query, "month")
	if err != nil {
		return MonthParams{}, err
	}
	if ok && (month < 1 || month > 12) {
		return MonthParams{}, core.InvalidArgument("month must be between 1 and 12, got %d", month)
	}
	p.Month = month
	return p, nil
}

// parseIntParam returns the integer value of name, or def when it is absent.
func parseIntParam(query url.Values, name string, def int) (int, error) {
	n, ok, err := parseOptionalIntParam(query, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return n, nil
}

// parseOptionalIntParam reports whether name is present and, if so, its value.
func parseOptionalIntParam(query url.Values, name string) (int, bool, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, core.InvalidArgument("%s must be an integer, got %q", name, sanitizeInput(v))
	}
	return n, true, nil
}

// parsePeriodToken returns the lower-cased period token, or def when absent.
func parsePeriodToken(query url.Values, def string) string {
	v := strings.ToLower(sanitizeInput(query.Get("period")))
	if v == "" {
		return def
	}
	return v
}
