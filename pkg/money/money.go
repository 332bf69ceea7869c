// Package money rounds full-precision float amounts to cents for presentation.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places used for every presented amount.
const Places = 2

// exactDigits is enough fractional digits to hold a float64 amount close to
// a half-cent tie without collapsing onto it.
const exactDigits = -20

// Round2 rounds the shortest decimal representation of v to cents using
// banker's rounding (half to even).
func Round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).RoundBank(Places)
}

// RoundExact rounds the binary value of v to cents using banker's rounding.
// Unlike Round2, 2.675 (stored as 2.67499...) rounds down.
func RoundExact(v float64) decimal.Decimal {
	return decimal.NewFromFloatWithExponent(v, exactDigits).RoundBank(Places)
}
