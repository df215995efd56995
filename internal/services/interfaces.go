package services

import (
	"context"

	"crm-ledger/internal/calculator"
	"crm-ledger/internal/models"
)

// CustomerService defines the interface for customer business logic operations
type CustomerService interface {
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, req *UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
}

// ItemService defines the interface for catalog item operations
type ItemService interface {
	CreateItem(ctx context.Context, req *CreateItemRequest) (*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, req *UpdateItemRequest) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context) ([]*models.Item, error)

	// Catalog returns a snapshot of the current catalog for sale entry
	Catalog(ctx context.Context) (*Catalog, error)
}

// SaleService defines the interface for building and reading sales
type SaleService interface {
	// NewDraft starts a sale draft against the current catalog
	NewDraft(ctx context.Context) (*SaleDraft, error)

	// CreateSale validates and commits a sale in one call
	CreateSale(ctx context.Context, req *CreateSaleRequest) (*models.Sale, error)

	// PreviewSale computes the totals a sale would have without saving it
	PreviewSale(ctx context.Context, req *CreateSaleRequest) (*SalePreview, error)

	// CompletePartialSale writes the lines a partial commit left pending
	CompletePartialSale(ctx context.Context, partial *PartialCommitError) (*models.Sale, error)

	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	ListSales(ctx context.Context) ([]*models.Sale, error)
}

// PaymentService defines the interface for payment operations
type PaymentService interface {
	RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
}

// LedgerService defines the derived views over the whole ledger
type LedgerService interface {
	ComputeBalances(ctx context.Context) ([]calculator.CustomerBalance, error)
	CustomerStatement(ctx context.Context, customerID int64) (*CustomerStatement, error)
	Stats(ctx context.Context) (*models.Stats, error)
	MonthlyReport(ctx context.Context, period string) (*calculator.SalesSummary, error)
	QuarterlyReport(ctx context.Context, quarter, year int) (*calculator.SalesSummary, error)

	// WipeAll irrecoverably deletes every record. confirm must be true.
	WipeAll(ctx context.Context, confirm bool) error
}

// Request and response types for service operations

// Customer service types
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// UpdateCustomerRequest replaces the provided fields of a customer
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Contact *string `json:"contact,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty"`
}

// Item service types
type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	GSTRate     float64 `json:"gst_rate"`
}

// UpdateItemRequest replaces the provided fields of an item
type UpdateItemRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	GSTRate     *float64 `json:"gst_rate,omitempty"`
}

// Sale service types
type CreateSaleRequest struct {
	CustomerID int64             `json:"customer_id"`
	Lines      []SaleLineRequest `json:"lines"`
}

// SaleLineRequest is one candidate line. ItemID 0 means no item was
// selected. UnitPrice and GSTRate default to the catalog values.
type SaleLineRequest struct {
	ItemID    int64    `json:"item_id"`
	Quantity  float64  `json:"quantity"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	GSTRate   *float64 `json:"gst_rate,omitempty"`
}

// PreviewLine is a candidate line with its live totals
type PreviewLine struct {
	ItemID    int64                 `json:"item_id"`
	ItemName  string                `json:"item_name,omitempty"`
	Quantity  float64               `json:"quantity"`
	UnitPrice float64               `json:"unit_price"`
	GSTRate   float64               `json:"gst_rate"`
	Totals    calculator.LineTotals `json:"totals"`
}

// SalePreview holds live totals of a draft
type SalePreview struct {
	CustomerID  int64         `json:"customer_id"`
	Lines       []PreviewLine `json:"lines"`
	TotalGST    float64       `json:"total_gst"`
	TotalAmount float64       `json:"total_amount"`
}

// Payment service types
type RecordPaymentRequest struct {
	CustomerID int64   `json:"customer_id" validate:"required,gt=0"`
	Amount     float64 `json:"amount"`
	SaleID     *int64  `json:"sale_id,omitempty"`
	Note       string  `json:"note"`
}

// CustomerStatement is a customer with its full history and net balance
type CustomerStatement struct {
	Customer      *models.Customer         `json:"customer"`
	Sales         []*models.Sale           `json:"sales"`
	Payments      []*models.Payment        `json:"payments"`
	TotalSales    float64                  `json:"total_sales"`
	TotalPayments float64                  `json:"total_payments"`
	Net           float64                  `json:"net"`
	Status        calculator.BalanceStatus `json:"status"`
}
