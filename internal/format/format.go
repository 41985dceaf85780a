// Package format provides pure numeric parsing, display formatting, and
// display classification helpers for financial values. No I/O.
package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber parses a source numeric string, stripping thousands
// separators. Empty strings and the "-"/"--" sentinels mean the value
// is unavailable upstream: ok is false and no number is returned,
// never NaN. Unparseable text is treated the same way.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" || s == "--" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FormatClose renders a close price with trailing insignificant zeros
// trimmed; integer closes keep their integer form.
func FormatClose(d decimal.Decimal) string {
	return d.String()
}

// FormatSigned renders a delta rounded to 2 decimal places with an
// explicit sign, trimming the insignificant fraction: +1.5, +3, -0.25.
func FormatSigned(d decimal.Decimal) string {
	r := d.Round(2)
	s := r.String()
	if r.Sign() >= 0 {
		s = "+" + s
	}
	return s
}

// FormatSignedPct renders a percentage delta as FormatSigned with a
// trailing percent sign.
func FormatSignedPct(d decimal.Decimal) string {
	return FormatSigned(d) + "%"
}

// SharesToLots converts net shares to board lots (1 lot = 1000 shares),
// truncating toward zero rather than rounding.
func SharesToLots(shares int64) int64 {
	return shares / 1000
}

// ColorClass maps a percent-change string onto the dashboard's color
// levels: lv3 at |p| >= 3, lv2 at |p| >= 1, lv1 for any other non-zero
// move, empty for flat or unavailable values.
func ColorClass(pctStr string) string {
	s := strings.TrimSuffix(strings.TrimSpace(pctStr), "%")
	if s == "" || s == "-" {
		return ""
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ""
	}

	abs := val
	prefix := "up"
	if val < 0 {
		abs = -val
		prefix = "down"
	}

	switch {
	case abs >= 3:
		return prefix + "-lv3"
	case abs >= 1:
		return prefix + "-lv2"
	case abs > 0:
		return prefix + "-lv1"
	}
	return ""
}

// ForeignClass maps a foreign-investor net lot count onto the
// dashboard's color levels: lv3 at |n| >= 3000, lv1 at |n| >= 800.
// Nil or zero lots carry no class.
func ForeignClass(lots *int64) string {
	if lots == nil || *lots == 0 {
		return ""
	}

	val := *lots
	abs := val
	prefix := "up"
	if val < 0 {
		abs = -val
		prefix = "down"
	}

	switch {
	case abs >= 3000:
		return prefix + "-lv3"
	case abs >= 800:
		return prefix + "-lv1"
	}
	return ""
}
