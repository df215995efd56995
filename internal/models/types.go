package models

// Collection names of the record store
const (
	CollectionCustomers = "customers"
	CollectionItems     = "items"
	CollectionSales     = "sales"
	CollectionSaleItems = "sale_items"
	CollectionPayments  = "payments"
)

// Collections lists every collection in dependency order: referenced
// collections come before the ones that reference them.
var Collections = []string{
	CollectionCustomers,
	CollectionItems,
	CollectionSales,
	CollectionSaleItems,
	CollectionPayments,
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// Stats is the dashboard summary of the ledger
type Stats struct {
	Customers   int     `json:"customers"`
	Items       int     `json:"items"`
	Sales       int     `json:"sales"`
	Payments    int     `json:"payments"`
	Receivables float64 `json:"receivables"`
}
