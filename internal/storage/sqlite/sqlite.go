// Package sqlite provides a SQLite-backed implementation of storage.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/anupamd/billsplit/internal/models"
	"github.com/anupamd/billsplit/internal/money"
	"github.com/anupamd/billsplit/internal/split"
	"github.com/anupamd/billsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a SQLiteStore at the given database path, creating parent
// directories and running migrations.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill session.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	vendorName, vendorDate := "", ""
	if bill.Vendor != nil {
		vendorName, vendorDate = bill.Vendor.Name, bill.Vendor.Date
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, vendor_name, vendor_date, tip_kind, tip_value, tax_kind, tax_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		bill.ID, vendorName, vendorDate,
		string(bill.Tip.Kind), bill.Tip.Value,
		string(bill.Tax.Kind), bill.Tax.Value,
		bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertBillContents(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBill replaces the stored state of a bill with the given snapshot.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	vendorName, vendorDate := "", ""
	if bill.Vendor != nil {
		vendorName, vendorDate = bill.Vendor.Name, bill.Vendor.Date
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET vendor_name = ?, vendor_date = ?, tip_kind = ?, tip_value = ?, tax_kind = ?, tax_value = ? WHERE id = ?",
		vendorName, vendorDate,
		string(bill.Tip.Kind), bill.Tip.Value,
		string(bill.Tax.Kind), bill.Tax.Value,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	// Items and people are rewritten wholesale; item_shares go with their
	// items via the cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM people WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}

	if err := insertBillContents(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including items, shares, and people.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var vendorName, vendorDate, tipKind, taxKind string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, vendor_name, vendor_date, tip_kind, tip_value, tax_kind, tax_value, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &vendorName, &vendorDate, &tipKind, &bill.Tip.Value, &taxKind, &bill.Tax.Value, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Tip.Kind = split.ChargeKind(tipKind)
	bill.Tax.Kind = split.ChargeKind(taxKind)
	if vendorName != "" {
		bill.Vendor = &models.VendorInfo{Name: vendorName, Date: vendorDate}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM people WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		bill.People = append(bill.People, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price_cents FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		var cents int64
		if err := itemRows.Scan(&item.ID, &item.Name, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Price = money.Money(cents)

		shareRows, err := s.db.QueryContext(ctx,
			"SELECT person FROM item_shares WHERE item_id = ? ORDER BY position",
			item.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item shares: %w", err)
		}
		for shareRows.Next() {
			var person string
			if err := shareRows.Scan(&person); err != nil {
				shareRows.Close()
				return nil, fmt.Errorf("failed to scan share: %w", err)
			}
			item.SharedBy = append(item.SharedBy, person)
		}
		shareRows.Close()
		if err := shareRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate shares: %w", err)
		}

		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return bill, nil
}

// DeleteBill removes a bill session; people, items, and shares cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// insertBillContents writes the people, items, and shares for a bill inside
// an open transaction.
func insertBillContents(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i, name := range bill.People {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO people (bill_id, name, position) VALUES (?, ?, ?)",
			bill.ID, name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, name, price_cents, position) VALUES (?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Name, int64(item.Price), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, person := range item.SharedBy {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_shares (item_id, person, position) VALUES (?, ?, ?)",
				item.ID, person, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item share: %w", err)
			}
		}
	}

	return nil
}
