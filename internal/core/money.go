// Package core provides the domain value types and money handling utilities.
//
// This file contains functions for parsing monetary amounts from strings and
// rendering cent values for display.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmountToCents converts a decimal amount string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The value
// is rounded half-up on the third decimal place. Only strictly positive
// amounts are accepted.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	v := d.Mul(hundred).Round(0).IntPart()
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatCents renders cents as a whole-unit amount with thousands separators
// and no decimal places, e.g. 123456789 -> "1,234,568".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	// Round half-up to whole units.
	units := (cents + 50) / 100
	s := groupThousands(strconv.FormatInt(units, 10))
	if neg {
		return "-" + s
	}
	return s
}

// FormatCentsExact renders cents with two decimal places and thousands
// separators, e.g. 123456789 -> "1,234,567.89". Used by report exports.
func FormatCentsExact(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	s := groupThousands(strconv.FormatInt(units, 10)) + "." + twoDigits(rem)
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func twoDigits(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
