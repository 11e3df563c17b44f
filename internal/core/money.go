// Package core holds the trip document model, the day-entry projection
// types, and money handling shared by the projector and the budget roll-up.
//
// This file contains the cents representation used when summing costs so
// that repeated additions of decimal amounts do not drift.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in minor units of a currency.
type Money struct {
	Cents    int64
	Currency string
}

// ToCents rounds a decimal amount half away from zero to minor units.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MaxAmount bounds amounts taken from floats so that sums of cents stay
// within int64.
const MaxAmount = 1e13

// CentsFromFloat is ToCents for untrusted input: it reports false for NaN,
// infinities and amounts beyond MaxAmount.
func CentsFromFloat(amount float64) (int64, bool) {
	if math.IsNaN(amount) || math.Abs(amount) > MaxAmount {
		return 0, false
	}
	return ToCents(amount), true
}

// Amount returns the decimal value for display and conversion.
// Use Cents for sums.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100.0
}

// NormalizeCurrency upper-cases a currency code and falls back to def when
// the code is blank.
func NormalizeCurrency(code, def string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return strings.ToUpper(strings.TrimSpace(def))
	}
	return code
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero and negative values are
// rejected.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
