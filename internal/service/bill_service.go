// Package service implements the bill session operations on top of the
// storage and extraction collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anupamd/billsplit/internal/metrics"
	"github.com/anupamd/billsplit/internal/models"
	"github.com/anupamd/billsplit/internal/receipt"
	"github.com/anupamd/billsplit/internal/split"
	"github.com/anupamd/billsplit/internal/storage"
)

var (
	// ErrDuplicatePerson is returned when a participant name already
	// exists on the bill.
	ErrDuplicatePerson = errors.New("person already on the bill")

	// ErrUnknownPerson is returned when an operation references a
	// participant the bill does not have.
	ErrUnknownPerson = errors.New("person not on the bill")

	// ErrItemNotFound is returned when an operation references a missing
	// item.
	ErrItemNotFound = errors.New("item not found")

	// ErrEmptyName is returned for blank person or item names.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrExtractionFailed wraps upstream extraction errors. The bill is
	// untouched; the user can proceed by adding items manually.
	ErrExtractionFailed = errors.New("receipt extraction failed")
)

// BillService owns the bill session lifecycle: people, items, charges, and
// the computed split. All mutations persist the full bill snapshot; reads
// recompute splits fresh on every call.
type BillService struct {
	store     storage.Store
	extractor receipt.Extractor
}

// NewBillService creates a BillService with the given collaborators.
func NewBillService(store storage.Store, extractor receipt.Extractor) *BillService {
	return &BillService{store: store, extractor: extractor}
}

// CreateBill starts a new session with optional initial people, items, and
// charge policies.
func (s *BillService) CreateBill(ctx context.Context, people []string, items []models.Item, tip, tax split.ChargePolicy) (*models.Bill, error) {
	bill := &models.Bill{
		People: []string{},
		Tip:    tip,
		Tax:    tax,
	}

	for _, name := range people {
		if err := addPerson(bill, name); err != nil {
			return nil, err
		}
	}
	for _, item := range items {
		if err := validateItem(bill, &item); err != nil {
			return nil, err
		}
		bill.Items = append(bill.Items, item)
	}
	if err := tip.Validate(); err != nil {
		return nil, fmt.Errorf("tip: %w", err)
	}
	if err := tax.Validate(); err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	slog.Info("Bill created", "bill_id", bill.ID, "people", len(bill.People), "items", len(bill.Items))
	return bill, nil
}

// GetBill retrieves a bill session.
func (s *BillService) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.store.GetBill(ctx, billID)
}

// DeleteBill discards a bill session.
func (s *BillService) DeleteBill(ctx context.Context, billID string) error {
	if err := s.store.DeleteBill(ctx, billID); err != nil {
		return err
	}
	slog.Info("Bill deleted", "bill_id", billID)
	return nil
}

// AddPerson adds a participant. Names are unique within a bill.
func (s *BillService) AddPerson(ctx context.Context, billID, name string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := addPerson(bill, name); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// RemovePerson removes a participant and prunes them from every item's
// shared-by list, so no stale references survive into later computations.
func (s *BillService) RemovePerson(ctx context.Context, billID, name string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !bill.RemovePerson(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPerson, name)
	}
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	slog.Info("Person removed", "bill_id", billID, "person", name)
	return bill, nil
}

// AddItem appends an item to the bill.
func (s *BillService) AddItem(ctx context.Context, billID string, item models.Item) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := validateItem(bill, &item); err != nil {
		return nil, err
	}
	bill.Items = append(bill.Items, item)
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// UpdateItem replaces an item's name, price, and shared-by list.
func (s *BillService) UpdateItem(ctx context.Context, billID, itemID string, item models.Item) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := validateItem(bill, &item); err != nil {
		return nil, err
	}

	found := false
	for i := range bill.Items {
		if bill.Items[i].ID == itemID {
			item.ID = itemID
			bill.Items[i] = item
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// RemoveItem deletes an item from the bill.
func (s *BillService) RemoveItem(ctx context.Context, billID, itemID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	items := bill.Items[:0]
	found := false
	for _, item := range bill.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}
	bill.Items = items

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// SetCharges replaces the tip and tax policies.
func (s *BillService) SetCharges(ctx context.Context, billID string, tip, tax split.ChargePolicy) (*models.Bill, error) {
	if err := tip.Validate(); err != nil {
		return nil, fmt.Errorf("tip: %w", err)
	}
	if err := tax.Validate(); err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	bill.Tip, bill.Tax = tip, tax
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// ComputeSplit calculates the current allocation from a fresh snapshot.
func (s *BillService) ComputeSplit(ctx context.Context, billID string) (*models.Bill, *split.Result, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, nil, err
	}

	result, err := split.Compute(splitItems(bill), bill.People, bill.Tip, bill.Tax)
	if err != nil {
		return nil, nil, err
	}
	metrics.SplitsComputed.Inc()
	return bill, result, nil
}

// Summary renders the shareable plain-text report for the current split.
func (s *BillService) Summary(ctx context.Context, billID string) (string, error) {
	bill, result, err := s.ComputeSplit(ctx, billID)
	if err != nil {
		return "", err
	}

	var vendor *split.VendorInfo
	if bill.Vendor != nil {
		vendor = &split.VendorInfo{Name: bill.Vendor.Name, Date: bill.Vendor.Date}
	}
	return split.FormatSummary(splitItems(bill), bill.People, result, vendor), nil
}

// ScanReceipt runs the extraction collaborator on the image and seeds the
// bill from the result: items and vendor info are replaced, tip and tax are
// seeded from the receipt totals, people are kept. On extraction failure the
// bill is untouched and the caller may proceed manually.
func (s *BillService) ScanReceipt(ctx context.Context, billID, imageBase64 string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	rcpt, err := s.extractor.ExtractReceipt(ctx, imageBase64)
	if err != nil {
		metrics.ReceiptScans.WithLabelValues("error").Inc()
		slog.Warn("Receipt extraction failed", "bill_id", billID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	metrics.ReceiptScans.WithLabelValues("ok").Inc()

	ingested := receipt.IngestReceipt(rcpt)
	bill.Items = ingested.Items
	bill.Vendor = ingested.Vendor
	bill.Tip = ingested.Tip
	bill.Tax = ingested.Tax

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	slog.Info("Receipt ingested", "bill_id", billID, "items", len(bill.Items))
	return bill, nil
}

func addPerson(bill *models.Bill, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if bill.HasPerson(name) {
		return fmt.Errorf("%w: %q", ErrDuplicatePerson, name)
	}
	bill.People = append(bill.People, name)
	return nil
}

func validateItem(bill *models.Bill, item *models.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrEmptyName
	}
	if item.Price < 0 {
		return &split.ValidationError{Reason: fmt.Sprintf("item %q has negative price", item.Name)}
	}

	// SharedBy is a set: collapse repeated names so an item never stores
	// the same sharer twice or grants anyone a multiple share.
	seen := make(map[string]bool, len(item.SharedBy))
	shared := item.SharedBy[:0]
	for _, person := range item.SharedBy {
		if seen[person] {
			continue
		}
		seen[person] = true
		if !bill.HasPerson(person) {
			return fmt.Errorf("%w: %q", ErrUnknownPerson, person)
		}
		shared = append(shared, person)
	}
	item.SharedBy = shared
	return nil
}

func splitItems(bill *models.Bill) []split.Item {
	items := make([]split.Item, len(bill.Items))
	for i, item := range bill.Items {
		items[i] = split.Item{Name: item.Name, Price: item.Price, SharedBy: item.SharedBy}
	}
	return items
}
