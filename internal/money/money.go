// Package money represents monetary amounts as integer cents.
//
// Holding cents instead of floating-point dollars keeps split arithmetic
// exact: sums of per-person shares match bill totals to the cent instead of
// within an epsilon. Conversion to and from decimal dollars happens only at
// the API and formatting boundaries.
package money

import (
	"fmt"
	"math"
)

// Money is an amount in cents.
type Money int64

// FromDollars converts a decimal dollar amount to cents, rounding half away
// from zero.
func FromDollars(dollars float64) Money {
	return Money(math.Round(dollars * 100))
}

// Dollars converts the amount back to decimal dollars.
func (m Money) Dollars() float64 {
	return float64(m) / 100
}

// String formats the amount with exactly two decimal places, e.g. "12.50".
func (m Money) String() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
