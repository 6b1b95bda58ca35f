package server

import (
	"github.com/anupamd/billsplit/internal/models"
	"github.com/anupamd/billsplit/internal/money"
	"github.com/anupamd/billsplit/internal/split"
)

// ChargePayload carries a tip or tax policy. Values are percentages for
// kind "percentage" and dollars for kind "fixed_amount".
type ChargePayload struct {
	Kind  string  `json:"kind" validate:"required,oneof=percentage fixed_amount"`
	Value float64 `json:"value" validate:"gte=0"`
}

// ItemPayload is an item as submitted by the client, price in dollars.
type ItemPayload struct {
	Name     string   `json:"name" validate:"required,min=1,max=200"`
	Price    float64  `json:"price" validate:"gte=0"`
	SharedBy []string `json:"shared_by,omitempty"`
}

// CreateBillRequest represents the request to open a new bill session
type CreateBillRequest struct {
	People []string       `json:"people,omitempty" validate:"dive,min=1,max=100"`
	Items  []ItemPayload  `json:"items,omitempty" validate:"dive"`
	Tip    *ChargePayload `json:"tip,omitempty"`
	Tax    *ChargePayload `json:"tax,omitempty"`
}

// AddPersonRequest represents the request to add a person to the bill
type AddPersonRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// SetChargesRequest replaces both tip and tax policies
type SetChargesRequest struct {
	Tip ChargePayload `json:"tip" validate:"required"`
	Tax ChargePayload `json:"tax" validate:"required"`
}

// ScanRequest carries a base64-encoded receipt image
type ScanRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// VendorResponse is the vendor block of a bill response
type VendorResponse struct {
	Name string `json:"name"`
	Date string `json:"date,omitempty"`
}

// ItemResponse is an item in a bill response, price in dollars
type ItemResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	SharedBy []string `json:"shared_by"`
}

// BillResponse represents the full bill session
type BillResponse struct {
	ID        string          `json:"id"`
	Vendor    *VendorResponse `json:"vendor,omitempty"`
	People    []string        `json:"people"`
	Items     []ItemResponse  `json:"items"`
	Tip       ChargePayload   `json:"tip"`
	Tax       ChargePayload   `json:"tax"`
	CreatedAt int64           `json:"created_at"`
}

// SplitResponse is the computed split, all amounts in dollars
type SplitResponse struct {
	Subtotal  float64            `json:"subtotal"`
	TipAmount float64            `json:"tip_amount"`
	TaxAmount float64            `json:"tax_amount"`
	Total     float64            `json:"total"`
	PerPerson map[string]float64 `json:"per_person"`
}

func (p ChargePayload) toPolicy() split.ChargePolicy {
	return split.ChargePolicy{Kind: split.ChargeKind(p.Kind), Value: p.Value}
}

func chargeFromPolicy(policy split.ChargePolicy) ChargePayload {
	return ChargePayload{Kind: string(policy.Kind), Value: policy.Value}
}

func (p ItemPayload) toModel() models.Item {
	return models.Item{
		Name:     p.Name,
		Price:    money.FromDollars(p.Price),
		SharedBy: p.SharedBy,
	}
}

func toModelItems(payloads []ItemPayload) []models.Item {
	items := make([]models.Item, len(payloads))
	for i, p := range payloads {
		items[i] = p.toModel()
	}
	return items
}

func toBillResponse(bill *models.Bill) *BillResponse {
	resp := &BillResponse{
		ID:        bill.ID,
		People:    bill.People,
		Items:     make([]ItemResponse, len(bill.Items)),
		Tip:       chargeFromPolicy(bill.Tip),
		Tax:       chargeFromPolicy(bill.Tax),
		CreatedAt: bill.CreatedAt,
	}
	if resp.People == nil {
		resp.People = []string{}
	}
	if bill.Vendor != nil {
		resp.Vendor = &VendorResponse{Name: bill.Vendor.Name, Date: bill.Vendor.Date}
	}
	for i, item := range bill.Items {
		shared := item.SharedBy
		if shared == nil {
			shared = []string{}
		}
		resp.Items[i] = ItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price.Dollars(),
			SharedBy: shared,
		}
	}
	return resp
}

func toSplitResponse(result *split.Result) *SplitResponse {
	resp := &SplitResponse{
		Subtotal:  result.Subtotal.Dollars(),
		TipAmount: result.TipAmount.Dollars(),
		TaxAmount: result.TaxAmount.Dollars(),
		Total:     result.Total.Dollars(),
		PerPerson: make(map[string]float64, len(result.PerPerson)),
	}
	for person, amount := range result.PerPerson {
		resp.PerPerson[person] = amount.Dollars()
	}
	return resp
}
