package models

// Sale is an invoice header. TotalAmount is the tax-inclusive grand total and
// TotalGST its tax portion, both rounded to 2 decimals.
type Sale struct {
	ID          int64   `json:"id" db:"id"`
	InvoiceNo   string  `json:"invoice_no" db:"invoice_no"`
	SaleDate    string  `json:"sale_date" db:"sale_date"`
	CustomerID  int64   `json:"customer_id" db:"customer_id"`
	TotalAmount float64 `json:"total_amount" db:"total_amount"`
	TotalGST    float64 `json:"total_gst" db:"total_gst"`

	// Associations (not stored with the sale, loaded separately)
	Items []SaleItem `json:"items,omitempty" db:"-"`
}

// SaleItem is one immutable line of a sale. Price and rate are frozen copies
// of the catalog values at sale time.
type SaleItem struct {
	ID        int64   `json:"id" db:"id"`
	SaleID    int64   `json:"sale_id" db:"sale_id"`
	ItemID    int64   `json:"item_id" db:"item_id"`
	Quantity  float64 `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`
	GSTRate   float64 `json:"gst_rate" db:"gst_rate"`
	GSTAmount float64 `json:"gst_amount" db:"gst_amount"`
	LineExcl  float64 `json:"line_excl" db:"line_excl"`
	LineIncl  float64 `json:"line_incl" db:"line_incl"`
}

// Payment records money received from a customer, optionally against a sale.
type Payment struct {
	ID          int64   `json:"id" db:"id"`
	CustomerID  int64   `json:"customer_id" db:"customer_id"`
	SaleID      *int64  `json:"sale_id" db:"sale_id"`
	PaymentDate string  `json:"payment_date" db:"payment_date"`
	Amount      float64 `json:"amount" db:"amount"`
	Note        string  `json:"note" db:"note"`
}

// HasSale returns true if the payment references a sale
func (p *Payment) HasSale() bool {
	return p.SaleID != nil && *p.SaleID > 0
}
