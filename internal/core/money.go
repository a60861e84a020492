// Package core provides the transaction model and the rounding used for
// display-facing values.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds x half away from zero to the given number of decimal places.
// Non-finite values are returned as 0.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Round2 is Round with two decimal places, used for amounts and percentages.
func Round2(x float64) float64 {
	return Round(x, 2)
}

// FormatFixed formats x with exactly the given number of decimals ("93.8", "0.00").
func FormatFixed(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}

// ParseAmount parses a non-negative decimal amount with an optional leading
// currency symbol. When both '.' and ',' appear, the last one is the decimal
// separator and the other groups thousands; a lone ',' is a decimal comma
// unless it repeats.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34
//	ParseAmount("12,34")    -> 12.34
//	ParseAmount("€ 1.5")    -> 1.5
//	ParseAmount("1,234.56") -> 1234.56
//	ParseAmount("1.234,56") -> 1234.56
func ParseAmount(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	s = raw
	for _, sym := range currencySymbols {
		if rest, ok := strings.CutPrefix(s, sym); ok {
			s = strings.TrimSpace(rest)
			break
		}
	}
	if s == "" {
		return 0, InvalidArgument("empty amount")
	}

	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, InvalidArgument("amount %q", raw)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	return d.InexactFloat64(), nil
}

var currencySymbols = []string{"€", "$", "£"}
