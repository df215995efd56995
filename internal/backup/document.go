package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"crm-ledger/internal/models"
)

// Document is the portable snapshot of every collection. Export always
// writes all five keys; import treats a missing key as an empty array.
type Document struct {
	Customers []models.Customer `json:"customers"`
	Items     []models.Item     `json:"items"`
	Sales     []models.Sale     `json:"sales"`
	SaleItems []models.SaleItem `json:"sale_items"`
	Payments  []models.Payment  `json:"payments"`
}

// NewDocument returns a document with every collection present and empty
func NewDocument() *Document {
	return &Document{
		Customers: []models.Customer{},
		Items:     []models.Item{},
		Sales:     []models.Sale{},
		SaleItems: []models.SaleItem{},
		Payments:  []models.Payment{},
	}
}

// Len returns the total number of records in the document
func (d *Document) Len() int {
	return len(d.Customers) + len(d.Items) + len(d.Sales) + len(d.SaleItems) + len(d.Payments)
}

// Mode selects how imported records keep their cross-references
type Mode string

const (
	// ModeRemap rewrites customer_id, item_id and sale_id through the ids
	// the store assigns on import
	ModeRemap Mode = "remap"

	// ModeMerge inserts records with their references untouched. Importing
	// into a non-empty store can leave references pointing at the wrong
	// records.
	ModeMerge Mode = "merge"
)

// ParseMode parses an import mode. The empty string selects ModeRemap.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeRemap:
		return ModeRemap, nil
	case ModeMerge:
		return ModeMerge, nil
	default:
		return "", models.NewValidationError("mode", fmt.Sprintf("unknown import mode %q", value), value)
	}
}

// ImportResult counts the records written per collection
type ImportResult struct {
	Mode      Mode `json:"mode"`
	Customers int  `json:"customers"`
	Items     int  `json:"items"`
	Sales     int  `json:"sales"`
	SaleItems int  `json:"sale_items"`
	Payments  int  `json:"payments"`

	// Dangling counts references to ids absent from the document, kept
	// verbatim in remap mode
	Dangling int `json:"dangling"`
}

// Total returns the number of records written
func (r ImportResult) Total() int {
	return r.Customers + r.Items + r.Sales + r.SaleItems + r.Payments
}

// ParseError reports a malformed backup document. Nothing was written.
type ParseError struct {
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed backup document: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// PartialImportError reports an import that failed after some records were
// written. Written holds the counts persisted before the failure.
type PartialImportError struct {
	Collection string       `json:"collection"`
	Index      int          `json:"index"`
	Written    ImportResult `json:"written"`
	Cause      error        `json:"-"`
}

// Error implements the error interface
func (e *PartialImportError) Error() string {
	return fmt.Sprintf("import stopped at %s[%d] after writing %d records: %v",
		e.Collection, e.Index, e.Written.Total(), e.Cause)
}

// Unwrap returns the underlying error
func (e *PartialImportError) Unwrap() error {
	return e.Cause
}

// IsParse checks if an error is a backup parse error
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsPartialImport checks if an error is a partial import error
func IsPartialImport(err error) bool {
	var pe *PartialImportError
	return errors.As(err, &pe)
}

// AsPartialImport extracts a partial import error
func AsPartialImport(err error) (*PartialImportError, bool) {
	var pe *PartialImportError
	ok := errors.As(err, &pe)
	return pe, ok
}

// Parse decodes a backup document. Any decoding failure is a ParseError.
func Parse(data []byte) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &ParseError{Err: errors.New("empty document")}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Err: errors.New("document is not an object")}
	}

	doc := NewDocument()
	fields := []struct {
		key    string
		target interface{}
	}{
		{models.CollectionCustomers, &doc.Customers},
		{models.CollectionItems, &doc.Items},
		{models.CollectionSales, &doc.Sales},
		{models.CollectionSaleItems, &doc.SaleItems},
		{models.CollectionPayments, &doc.Payments},
	}

	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok || string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, f.target); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("%s: %w", f.key, err)}
		}
	}

	return doc, nil
}

// Marshal encodes a document as indented JSON
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil {
		doc = NewDocument()
	}
	return json.MarshalIndent(doc, "", "  ")
}
