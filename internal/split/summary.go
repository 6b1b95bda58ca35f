package split

import (
	"fmt"
	"strings"
)

// VendorInfo is the optional receipt header shown above the item list.
type VendorInfo struct {
	Name string
	Date string
}

// FormatSummary renders a shareable plain-text report of the split: the
// items with who shares them, the bill totals, and each person's owed
// amount. Items appear in input order and people in the order given. Every
// monetary figure is formatted with exactly two decimal places.
func FormatSummary(items []Item, people []string, result *Result, vendor *VendorInfo) string {
	var b strings.Builder

	b.WriteString("🧾 Bill Split Summary 🧾\n\n")

	if vendor != nil {
		fmt.Fprintf(&b, "%s\n", vendor.Name)
		if vendor.Date != "" {
			fmt.Fprintf(&b, "Date: %s\n", vendor.Date)
		}
		b.WriteString("\n")
	}

	b.WriteString("Items:\n")
	for _, item := range items {
		if len(item.SharedBy) == 0 {
			fmt.Fprintf(&b, "- %s: $%s (unassigned)\n", item.Name, item.Price)
		} else {
			fmt.Fprintf(&b, "- %s: $%s (Shared by: %s)\n", item.Name, item.Price, strings.Join(item.SharedBy, ", "))
		}
	}

	fmt.Fprintf(&b, "\nSubtotal: $%s\n", result.Subtotal)
	fmt.Fprintf(&b, "Tip: $%s\n", result.TipAmount)
	fmt.Fprintf(&b, "Tax: $%s\n", result.TaxAmount)
	fmt.Fprintf(&b, "Total: $%s\n", result.Total)

	b.WriteString("\nSplit:\n")
	for _, person := range people {
		fmt.Fprintf(&b, "%s: $%s\n", person, result.PerPerson[person])
	}

	return b.String()
}
