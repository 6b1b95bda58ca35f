package split

import (
	"strings"
	"testing"
)

func TestFormatSummary(t *testing.T) {
	items := []Item{
		{Name: "Pizza", Price: 2000, SharedBy: []string{"A", "B"}},
		{Name: "Soda", Price: 400, SharedBy: []string{"A"}},
	}
	people := []string{"A", "B"}

	result, err := Compute(items, people,
		ChargePolicy{Kind: ChargePercentage, Value: 10},
		ChargePolicy{Kind: ChargePercentage, Value: 5},
	)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	got := FormatSummary(items, people, result, nil)
	want := "🧾 Bill Split Summary 🧾\n\n" +
		"Items:\n" +
		"- Pizza: $20.00 (Shared by: A, B)\n" +
		"- Soda: $4.00 (Shared by: A)\n" +
		"\nSubtotal: $24.00\n" +
		"Tip: $2.40\n" +
		"Tax: $1.20\n" +
		"Total: $27.60\n" +
		"\nSplit:\n" +
		"A: $16.10\n" +
		"B: $11.50\n"

	if got != want {
		t.Errorf("FormatSummary() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatSummaryVendorHeader(t *testing.T) {
	items := []Item{{Name: "Coffee", Price: 350, SharedBy: []string{"A"}}}
	people := []string{"A"}

	result, err := Compute(items, people,
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
	)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	vendor := &VendorInfo{Name: "Blue Bottle", Date: "2025-03-14"}
	got := FormatSummary(items, people, result, vendor)

	if !strings.HasPrefix(got, "🧾 Bill Split Summary 🧾\n\nBlue Bottle\nDate: 2025-03-14\n\nItems:\n") {
		t.Errorf("vendor header missing or misplaced:\n%s", got)
	}
}

func TestFormatSummaryVendorWithoutDate(t *testing.T) {
	items := []Item{{Name: "Coffee", Price: 350, SharedBy: []string{"A"}}}
	people := []string{"A"}

	result, err := Compute(items, people,
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
	)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	vendor := &VendorInfo{Name: "Blue Bottle"}
	got := FormatSummary(items, people, result, vendor)

	if !strings.HasPrefix(got, "🧾 Bill Split Summary 🧾\n\nBlue Bottle\n\nItems:\n") {
		t.Errorf("vendor header malformed without a date:\n%s", got)
	}
	if strings.Contains(got, "Date:") {
		t.Errorf("date line should be omitted when empty:\n%s", got)
	}
}

// Two decimal places regardless of value: whole dollars render ".00" and
// fractional cents never show more than two digits.
func TestFormatSummaryTwoDecimalPlaces(t *testing.T) {
	items := []Item{
		{Name: "Round", Price: 1200, SharedBy: []string{"A"}},
		{Name: "Odd", Price: 1, SharedBy: []string{"A"}},
	}
	people := []string{"A"}

	result, err := Compute(items, people,
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
	)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	got := FormatSummary(items, people, result, nil)
	for _, want := range []string{"$12.00", "$0.01", "Subtotal: $12.01", "A: $12.01"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSummaryUnassignedItem(t *testing.T) {
	items := []Item{{Name: "Service Fee", Price: 150, SharedBy: nil}}
	people := []string{"A"}

	result, err := Compute(items, people,
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
		ChargePolicy{Kind: ChargeFixedAmount, Value: 0},
	)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	got := FormatSummary(items, people, result, nil)
	if !strings.Contains(got, "- Service Fee: $1.50 (unassigned)") {
		t.Errorf("unassigned item not marked:\n%s", got)
	}
}
