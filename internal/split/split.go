// Package split computes per-person bill allocations.
//
// The engine is pure: Compute takes a snapshot of items, participants, and
// tip/tax policies and returns a fresh Result. Tip and tax are distributed
// across items in proportion to each item's share of the subtotal, then each
// item's fully-loaded amount is divided evenly among the people sharing it.
// All arithmetic is done in integer cents, so when every item is assigned to
// known participants the per-person amounts sum exactly to the bill total.
package split

import (
	"fmt"
	"math/bits"

	"github.com/anupamd/billsplit/internal/money"
)

// Item is a single priced line on the bill.
type Item struct {
	Name  string
	Price money.Money
	// SharedBy lists the participants splitting this item. It is a set:
	// repeated names count once. An empty list marks an unassigned item:
	// it still counts toward the subtotal and total but is allocated to
	// nobody.
	SharedBy []string
}

// Result is the computed allocation for one bill snapshot.
type Result struct {
	Subtotal  money.Money
	TipAmount money.Money
	TaxAmount money.Money
	Total     money.Money

	// PerPerson maps each participant to the amount they owe. Every known
	// participant has an entry, including people with no assigned items
	// (amount 0).
	PerPerson map[string]money.Money
}

// Compute calculates how much each person owes.
//
// SharedBy lists are treated as sets: a name repeated on one item receives a
// single share. Participants named in an item's SharedBy but absent from
// people are skipped silently: the item is still divided by the distinct
// SharedBy count, and the unknown member's share is allocated to nobody. Such
// stale references are normally prevented upstream by cascading person
// removal.
func Compute(items []Item, people []string, tip, tax ChargePolicy) (*Result, error) {
	for _, item := range items {
		if item.Price < 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %q has negative price", item.Name)}
		}
	}
	if err := tip.Validate(); err != nil {
		return nil, fmt.Errorf("tip: %w", err)
	}
	if err := tax.Validate(); err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}

	var subtotal money.Money
	for _, item := range items {
		subtotal += item.Price
	}

	tipAmount := tip.AmountOn(subtotal)
	taxAmount := tax.AmountOn(subtotal)

	result := &Result{
		Subtotal:  subtotal,
		TipAmount: tipAmount,
		TaxAmount: taxAmount,
		Total:     subtotal + tipAmount + taxAmount,
		PerPerson: make(map[string]money.Money, len(people)),
	}
	for _, p := range people {
		result.PerPerson[p] = 0
	}

	known := make(map[string]bool, len(people))
	for _, p := range people {
		known[p] = true
	}

	surcharges := apportion(items, subtotal, tipAmount+taxAmount)

	for i, item := range items {
		members := distinctNames(item.SharedBy)
		if len(members) == 0 {
			continue
		}

		// Fully-loaded amount: price plus this item's proportional share
		// of tip and tax.
		loaded := item.Price + surcharges[i]

		n := money.Money(len(members))
		share := loaded / n
		extra := loaded % n

		for j, person := range members {
			amount := share
			// The leftover cents go to the first members so the shares
			// sum exactly to the loaded amount.
			if money.Money(j) < extra {
				amount++
			}
			if known[person] {
				result.PerPerson[person] += amount
			}
		}
	}

	return result, nil
}

// apportion distributes surcharge cents across items in proportion to each
// item's share of the subtotal, using largest-remainder rounding so the
// distributed amounts sum exactly to surcharge. A zero subtotal yields all
// zeros (the proportional share is undefined, treated as 0).
func apportion(items []Item, subtotal, surcharge money.Money) []money.Money {
	shares := make([]money.Money, len(items))
	if subtotal == 0 || surcharge == 0 {
		return shares
	}

	type remainder struct {
		index int
		value money.Money
	}

	var allocated money.Money
	remainders := make([]remainder, 0, len(items))
	for i, item := range items {
		// price × surcharge through a 128-bit intermediate so very large
		// bills cannot overflow int64 cents.
		hi, lo := bits.Mul64(uint64(item.Price), uint64(surcharge))
		quo, rem := bits.Div64(hi, lo, uint64(subtotal))
		shares[i] = money.Money(quo)
		allocated += shares[i]
		remainders = append(remainders, remainder{index: i, value: money.Money(rem)})
	}

	// Hand the undistributed cents to the items with the largest
	// remainders, earlier items winning ties.
	for left := surcharge - allocated; left > 0; left-- {
		best := -1
		for j, r := range remainders {
			if best == -1 || r.value > remainders[best].value {
				best = j
			}
		}
		shares[remainders[best].index]++
		remainders[best].value = -1
	}

	return shares
}

// distinctNames drops repeated names, keeping first-occurrence order.
func distinctNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
