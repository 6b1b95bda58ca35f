// Package storage provides abstractions for bill session storage.
package storage

import (
	"context"
	"errors"

	"github.com/anupamd/billsplit/internal/models"
)

// ErrNotFound is returned when the requested bill does not exist.
var ErrNotFound = errors.New("bill not found")

// Store defines the interface for bill session storage. This abstraction
// keeps the service layer independent of the backend (SQLite today).
type Store interface {
	// CreateBill persists a new bill. The bill's ID and CreatedAt fields
	// are populated by the store if unset.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID, including items, shares, and
	// people. Returns ErrNotFound if it does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces the stored state of an existing bill with the
	// given snapshot. Returns ErrNotFound if it does not exist.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and everything attached to it.
	DeleteBill(ctx context.Context, billID string) error

	// Close releases any resources held by the store.
	Close() error
}
