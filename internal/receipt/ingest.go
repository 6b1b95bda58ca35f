package receipt

import (
	"math"

	"github.com/anupamd/billsplit/internal/models"
	"github.com/anupamd/billsplit/internal/money"
	"github.com/anupamd/billsplit/internal/split"
)

// Ingested is a Receipt mapped into bill inputs.
type Ingested struct {
	Items  []models.Item
	Vendor *models.VendorInfo
	Tip    split.ChargePolicy
	Tax    split.ChargePolicy
}

// IngestReceipt maps an extracted receipt into bill items and seeded charge
// policies.
//
// Item prices come from line_items[].subtotal, falling back to
// unit_price × quantity. Additional charges become unassigned items: they
// raise the subtotal and total but allocate to nobody until the user assigns
// them. Tip and tax policies are seeded once here: an explicit tip
// percentage wins, and raw amounts are converted to a percentage of the
// receipt's subtotal when one exists. The engine never recomputes these.
func IngestReceipt(rcpt *Receipt) Ingested {
	ingested := Ingested{
		Tip: split.ChargePolicy{Kind: split.ChargePercentage, Value: 0},
		Tax: split.ChargePolicy{Kind: split.ChargePercentage, Value: 0},
	}
	if rcpt == nil {
		return ingested
	}

	for _, line := range rcpt.LineItems {
		price := line.Subtotal
		if price == 0 && line.UnitPrice > 0 {
			qty := line.Quantity
			if qty <= 0 {
				qty = 1
			}
			price = line.UnitPrice * qty
		}
		if price < 0 || line.ItemName == "" {
			continue
		}
		ingested.Items = append(ingested.Items, models.Item{
			Name:  line.ItemName,
			Price: money.FromDollars(price),
		})
	}

	for _, charge := range rcpt.AdditionalCharges {
		if charge.Amount <= 0 || charge.ChargeName == "" {
			continue
		}
		ingested.Items = append(ingested.Items, models.Item{
			Name:  charge.ChargeName,
			Price: money.FromDollars(charge.Amount),
		})
	}

	if rcpt.VendorInfo.Name != "" {
		ingested.Vendor = &models.VendorInfo{
			Name: rcpt.VendorInfo.Name,
			Date: rcpt.VendorInfo.Date,
		}
	}

	subtotal := rcpt.Totals.Subtotal
	if subtotal == 0 {
		for _, item := range ingested.Items {
			subtotal += item.Price.Dollars()
		}
	}

	ingested.Tip = seedCharge(rcpt.Totals.TipPercentage, rcpt.Totals.Tip, subtotal)
	ingested.Tax = seedCharge(nil, &rcpt.Totals.Tax, subtotal)

	return ingested
}

// seedCharge picks a ChargePolicy from an optional explicit percentage and an
// optional raw amount. Raw amounts convert to a percentage of the subtotal so
// the charge scales if the user edits items afterward; with no subtotal to
// divide by, the amount stays fixed.
func seedCharge(percentage, amount *float64, subtotal float64) split.ChargePolicy {
	if percentage != nil && *percentage > 0 {
		return split.ChargePolicy{Kind: split.ChargePercentage, Value: *percentage}
	}
	if amount != nil && *amount > 0 {
		if subtotal > 0 {
			value := math.Round(*amount / subtotal * 100 * 100) / 100
			return split.ChargePolicy{Kind: split.ChargePercentage, Value: value}
		}
		return split.ChargePolicy{Kind: split.ChargeFixedAmount, Value: *amount}
	}
	return split.ChargePolicy{Kind: split.ChargePercentage, Value: 0}
}
