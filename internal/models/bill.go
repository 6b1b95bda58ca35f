package models

import (
	"github.com/anupamd/billsplit/internal/money"
	"github.com/anupamd/billsplit/internal/split"
)

// Bill represents one bill-splitting session.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Vendor holds the receipt header when the bill was seeded from a
	// scanned receipt. Nil for manually built bills.
	Vendor *VendorInfo

	// Items are the individual priced lines on the bill, in display order.
	Items []Item

	// People is the list of participant names splitting the bill. Names
	// are unique within a bill.
	People []string

	// Tip and Tax are the charge policies applied on top of the item
	// subtotal.
	Tip split.ChargePolicy
	Tax split.ChargePolicy

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// Item is a single priced line on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the item description, e.g. "Pad Thai".
	Name string

	// Price is the item's pre-tax, pre-tip amount in cents.
	Price money.Money

	// SharedBy lists the participants splitting this item evenly. Empty
	// means unassigned: the item counts toward the total but is allocated
	// to nobody.
	SharedBy []string
}

// VendorInfo is the receipt header extracted from a scanned image.
type VendorInfo struct {
	Name string
	Date string
}

// RemovePerson deletes the named participant and prunes them from every
// item's SharedBy list, so no stale references survive. It reports whether
// the person was present.
func (b *Bill) RemovePerson(name string) bool {
	found := false
	people := b.People[:0]
	for _, p := range b.People {
		if p == name {
			found = true
			continue
		}
		people = append(people, p)
	}
	b.People = people
	if !found {
		return false
	}

	for i := range b.Items {
		shared := b.Items[i].SharedBy[:0]
		for _, p := range b.Items[i].SharedBy {
			if p != name {
				shared = append(shared, p)
			}
		}
		b.Items[i].SharedBy = shared
	}
	return true
}

// HasPerson reports whether the named participant is on the bill.
func (b *Bill) HasPerson(name string) bool {
	for _, p := range b.People {
		if p == name {
			return true
		}
	}
	return false
}
