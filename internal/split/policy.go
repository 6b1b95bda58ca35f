package split

import (
	"fmt"
	"math"

	"github.com/anupamd/billsplit/internal/money"
)

// ChargeKind selects how a tip or tax charge is interpreted.
type ChargeKind string

const (
	// ChargePercentage means Value is a percent of the bill subtotal.
	ChargePercentage ChargeKind = "percentage"
	// ChargeFixedAmount means Value is an absolute dollar amount added
	// regardless of subtotal.
	ChargeFixedAmount ChargeKind = "fixed_amount"
)

// ChargePolicy describes a tip or tax charge.
type ChargePolicy struct {
	Kind  ChargeKind
	Value float64
}

// Validate rejects negative values and unknown kinds.
func (p ChargePolicy) Validate() error {
	if p.Kind != ChargePercentage && p.Kind != ChargeFixedAmount {
		return &ValidationError{Reason: fmt.Sprintf("unknown charge kind %q", p.Kind)}
	}
	if p.Value < 0 {
		return &ValidationError{Reason: fmt.Sprintf("charge value must not be negative, got %v", p.Value)}
	}
	return nil
}

// AmountOn resolves the charge to cents against the given subtotal.
// A percentage of a zero subtotal is zero.
func (p ChargePolicy) AmountOn(subtotal money.Money) money.Money {
	if p.Kind == ChargePercentage {
		return money.Money(math.Round(float64(subtotal) * p.Value / 100))
	}
	return money.FromDollars(p.Value)
}

// ValidationError reports invalid engine input. It is returned before any
// computation happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid split input: " + e.Reason
}
