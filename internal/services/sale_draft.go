package services

import (
	"context"
	"fmt"
	"sync"

	"crm-ledger/internal/calculator"
	"crm-ledger/internal/models"
)

// DraftState is the lifecycle state of a sale draft
type DraftState int

const (
	DraftCollecting DraftState = iota
	DraftValidating
	DraftCommitted
)

// String returns the state name
func (s DraftState) String() string {
	switch s {
	case DraftCollecting:
		return "collecting"
	case DraftValidating:
		return "validating"
	case DraftCommitted:
		return "committed"
	default:
		return fmt.Sprintf("DraftState(%d)", int(s))
	}
}

// SaleDraft assembles the candidate lines of one sale against a catalog
// snapshot. A draft is committed at most once.
type SaleDraft struct {
	mu         sync.Mutex
	service    *saleService
	catalog    *Catalog
	customerID int64
	lines      []SaleLineRequest
	state      DraftState
	sale       *models.Sale
}

func newSaleDraft(service *saleService, catalog *Catalog) *SaleDraft {
	return &SaleDraft{
		service: service,
		catalog: catalog,
		state:   DraftCollecting,
	}
}

// State returns the current draft state
func (d *SaleDraft) State() DraftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Catalog returns the snapshot the draft prices lines against
func (d *SaleDraft) Catalog() *Catalog {
	return d.catalog
}

// SetCustomer selects the customer the sale is for
func (d *SaleDraft) SetCustomer(customerID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DraftCommitted {
		return ErrDraftCommitted
	}
	d.customerID = customerID
	return nil
}

// AddLine appends a candidate line and returns its index
func (d *SaleDraft) AddLine(line SaleLineRequest) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DraftCommitted {
		return 0, ErrDraftCommitted
	}
	d.lines = append(d.lines, line)
	return len(d.lines) - 1, nil
}

// RemoveLine removes the candidate line at index
func (d *SaleDraft) RemoveLine(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DraftCommitted {
		return ErrDraftCommitted
	}
	if index < 0 || index >= len(d.lines) {
		return models.NewValidationError("lines", fmt.Sprintf("no line at index %d", index), index)
	}
	d.lines = append(d.lines[:index], d.lines[index+1:]...)
	return nil
}

// Lines returns a copy of the candidate lines
func (d *SaleDraft) Lines() []SaleLineRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SaleLineRequest(nil), d.lines...)
}

// Sale returns the committed sale, or nil before a commit
func (d *SaleDraft) Sale() *models.Sale {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sale
}

// Preview computes live totals for every candidate line. Lines without a
// selected item show zero totals and do not count toward the grand totals.
func (d *SaleDraft) Preview() *SalePreview {
	d.mu.Lock()
	defer d.mu.Unlock()

	preview := &SalePreview{
		CustomerID: d.customerID,
		Lines:      make([]PreviewLine, 0, len(d.lines)),
	}

	selected := make([]calculator.LineTotals, 0, len(d.lines))
	for _, line := range d.lines {
		pl := resolveLine(d.catalog, line)
		if line.ItemID > 0 {
			pl.Totals = calculator.ComputeLine(pl.Quantity, pl.UnitPrice, pl.GSTRate)
			selected = append(selected, pl.Totals)
		}
		preview.Lines = append(preview.Lines, pl)
	}

	totals := calculator.Aggregate(selected)
	preview.TotalGST = calculator.Round2(totals.TotalGST)
	preview.TotalAmount = calculator.Round2(totals.TotalAmount)
	return preview
}

// Commit validates the draft and persists the sale followed by its lines.
// A validation or header failure returns the draft to collecting with
// nothing written. A failure after the header was written returns the
// sale with a PartialCommitError and the draft counts as committed.
func (d *SaleDraft) Commit(ctx context.Context) (*models.Sale, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DraftCommitted {
		return nil, ErrDraftCommitted
	}
	d.state = DraftValidating

	sale, err := d.service.commit(ctx, d.catalog, d.customerID, d.lines)
	if err != nil {
		if IsPartialCommit(err) {
			d.state = DraftCommitted
			d.sale = sale
			return sale, err
		}
		d.state = DraftCollecting
		return nil, err
	}

	d.state = DraftCommitted
	d.sale = sale
	return sale, nil
}

// resolveLine fills price and rate from the catalog unless the line
// overrides them
func resolveLine(catalog *Catalog, line SaleLineRequest) PreviewLine {
	pl := PreviewLine{
		ItemID:   line.ItemID,
		Quantity: line.Quantity,
	}

	if item, ok := catalog.Lookup(line.ItemID); ok && line.ItemID > 0 {
		pl.ItemName = item.Name
		pl.UnitPrice = item.Price
		pl.GSTRate = item.GSTRate
	}
	if line.UnitPrice != nil {
		pl.UnitPrice = *line.UnitPrice
	}
	if line.GSTRate != nil {
		pl.GSTRate = *line.GSTRate
	}

	return pl
}
