// Package receipt talks to the vision extraction service and turns its
// answers into bill data.
//
// The upstream model is an unreliable text generator: responses may be
// fenced in markdown, truncated mid-object, or not JSON at all. Everything
// defensive lives behind ParseResponse, which either returns a structured
// Receipt or fails with ErrUnparsable; callers never see malformed data and
// treat a failure as "zero items extracted, add them manually".
package receipt

// Receipt is the structured document produced by the extraction service.
type Receipt struct {
	VendorInfo        VendorInfo         `json:"vendor_info"`
	LineItems         []LineItem         `json:"line_items"`
	AdditionalCharges []AdditionalCharge `json:"additional_charges"`
	Totals            Totals             `json:"totals"`
}

// VendorInfo is the receipt header.
type VendorInfo struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
}

// LineItem is one itemized entry on the receipt. Monetary values are decimal
// dollars as extracted; conversion to cents happens at ingestion.
type LineItem struct {
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Subtotal  float64 `json:"subtotal"`
	Notes     string  `json:"notes,omitempty"`
}

// AdditionalCharge is a surcharge line such as a service or delivery fee.
type AdditionalCharge struct {
	ChargeName string  `json:"charge_name"`
	Amount     float64 `json:"amount"`
}

// Totals is the receipt's own totals section.
type Totals struct {
	Subtotal      float64  `json:"subtotal"`
	Tax           float64  `json:"tax"`
	Tip           *float64 `json:"tip,omitempty"`
	TipPercentage *float64 `json:"tip_percentage,omitempty"`
	Total         float64  `json:"total"`
}

// Empty reports whether the receipt carries no usable data.
func (r *Receipt) Empty() bool {
	return r == nil || (r.VendorInfo.Name == "" && len(r.LineItems) == 0)
}
