package repositories

import (
	"context"

	"crm-ledger/internal/models"
)

// Collection defines the keyed record operations shared by every collection
type Collection[T any] interface {
	// Create assigns a fresh ID, persists the record and returns the ID.
	// Any ID already set on the record is ignored and overwritten.
	Create(ctx context.Context, record *T) (int64, error)

	// Upsert replaces the record stored under the record's ID. The ID need
	// not exist yet.
	Upsert(ctx context.Context, record *T) error

	// GetAll retrieves every record in insertion order
	GetAll(ctx context.Context) ([]*T, error)

	// GetByID retrieves a record by its ID, or ErrNotFound
	GetByID(ctx context.Context, id int64) (*T, error)

	// Remove deletes a record. Removing an absent ID is not an error.
	Remove(ctx context.Context, id int64) error

	// Count returns the number of records
	Count(ctx context.Context) (int, error)
}

// SaleCollection defines operations specific to sales
type SaleCollection interface {
	Collection[models.Sale]

	// ListByCustomer retrieves a customer's sales in insertion order
	ListByCustomer(ctx context.Context, customerID int64) ([]*models.Sale, error)
}

// SaleItemCollection defines operations specific to sale lines
type SaleItemCollection interface {
	Collection[models.SaleItem]

	// ListBySale retrieves the lines of a sale in insertion order
	ListBySale(ctx context.Context, saleID int64) ([]*models.SaleItem, error)
}

// PaymentCollection defines operations specific to payments
type PaymentCollection interface {
	Collection[models.Payment]

	// ListByCustomer retrieves a customer's payments in insertion order
	ListByCustomer(ctx context.Context, customerID int64) ([]*models.Payment, error)
}

// InvoiceSequencer hands out per-day invoice sequence numbers
type InvoiceSequencer interface {
	// NextInvoiceSequence increments and returns the counter for day
	// (YYYYMMDD). The first call for a day returns 1.
	NextInvoiceSequence(ctx context.Context, day string) (int, error)
}

// Store provides access to all record collections. The store performs no
// referential checks between collections and offers no multi-statement
// atomicity: each mutating call is durable on return.
type Store interface {
	InvoiceSequencer

	// Customers returns the customer collection
	Customers() Collection[models.Customer]

	// Items returns the catalog item collection
	Items() Collection[models.Item]

	// Sales returns the sale collection
	Sales() SaleCollection

	// SaleItems returns the sale line collection
	SaleItems() SaleItemCollection

	// Payments returns the payment collection
	Payments() PaymentCollection

	// ResetAll irrecoverably deletes every record and counter
	ResetAll(ctx context.Context) error

	// Health checks the health of the store connection
	Health(ctx context.Context) error

	// Close closes the store
	Close() error
}
