// Package normalize converts raw scraped field text into canonical typed
// values. Malformed or missing input maps to nil, never to an error: a record
// with a garbled price is still a record.
package normalize

import (
	"strconv"
	"strings"
)

// Price parses a currency-formatted price string ("£1,234,500", "Guide price
// £2m") into a float. Every character that is not a digit or decimal point is
// stripped; if nothing survives, there is no value.
func Price(s string) *float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// IntField parses a count field ("2", "2 beds") into an int by stripping
// everything that is not a digit.
func IntField(s string) *int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	v, err := strconv.Atoi(b.String())
	if err != nil {
		return nil
	}
	return &v
}

// Text collapses newlines, tabs and carriage returns to single spaces and
// trims. Missing text is nil rather than an empty string.
func Text(s string) *string {
	replaced := strings.NewReplacer("\n", " ", "\t", " ", "\r", "").Replace(s)
	cleaned := strings.TrimSpace(replaced)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// String returns a nil-safe trimmed pointer without whitespace collapsing,
// for single-line fields like postcodes and type labels.
func String(s string) *string {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// PricePerSqm derives price per square metre when both inputs are present and
// the area is positive. Division by zero or negative area is a non-value, not
// a panic.
func PricePerSqm(price, floorAreaSqm *float64) *float64 {
	if price == nil || floorAreaSqm == nil || *floorAreaSqm <= 0 {
		return nil
	}
	v := *price / *floorAreaSqm
	return &v
}
