package services

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"crm-ledger/internal/calculator"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
)

// saleService implements the SaleService interface
type saleService struct {
	customers repositories.Collection[models.Customer]
	items     repositories.Collection[models.Item]
	sales     repositories.SaleCollection
	saleItems repositories.SaleItemCollection
	numberer  *InvoiceNumberer
	clock     *models.Clock
	legacy    bool
	logger    *logrus.Logger
}

// NewSaleService creates a new sale service instance. With legacy set,
// invalid line numbers are coerced to 0 instead of being rejected.
func NewSaleService(store repositories.Store, numberer *InvoiceNumberer, clock *models.Clock, legacy bool, logger *logrus.Logger) SaleService {
	return &saleService{
		customers: store.Customers(),
		items:     store.Items(),
		sales:     store.Sales(),
		saleItems: store.SaleItems(),
		numberer:  numberer,
		clock:     clock,
		legacy:    legacy,
		logger:    logger,
	}
}

// NewDraft starts a draft priced against the current catalog
func (s *saleService) NewDraft(ctx context.Context) (*SaleDraft, error) {
	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return newSaleDraft(s, NewCatalog(items)), nil
}

// CreateSale validates and commits a sale in one call
func (s *saleService) CreateSale(ctx context.Context, req *CreateSaleRequest) (*models.Sale, error) {
	draft, err := s.draftFrom(ctx, req)
	if err != nil {
		return nil, err
	}
	return draft.Commit(ctx)
}

// PreviewSale computes the totals of a sale without saving it
func (s *saleService) PreviewSale(ctx context.Context, req *CreateSaleRequest) (*SalePreview, error) {
	draft, err := s.draftFrom(ctx, req)
	if err != nil {
		return nil, err
	}
	return draft.Preview(), nil
}

func (s *saleService) draftFrom(ctx context.Context, req *CreateSaleRequest) (*SaleDraft, error) {
	if req == nil {
		return nil, models.NewValidationError("", "create sale request cannot be nil", nil)
	}

	draft, err := s.NewDraft(ctx)
	if err != nil {
		return nil, err
	}

	if err := draft.SetCustomer(req.CustomerID); err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if _, err := draft.AddLine(line); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// CompletePartialSale writes the lines a partial commit left pending and
// returns the completed sale. The sale must exist and its stored lines plus
// the recomputed pending lines must add up to its recorded totals.
func (s *saleService) CompletePartialSale(ctx context.Context, partial *PartialCommitError) (*models.Sale, error) {
	if partial == nil || partial.SaleID <= 0 {
		return nil, models.NewValidationError("sale_id", "partial commit has no sale", nil)
	}
	if len(partial.Pending) == 0 {
		return nil, models.NewValidationError("pending", "no pending lines", nil)
	}

	sale, err := s.sales.GetByID(ctx, partial.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	stored, err := s.saleItems.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	expected := len(stored) + len(partial.Pending)
	if partial.Expected > 0 && partial.Expected != expected {
		return nil, models.NewValidationError("expected",
			fmt.Sprintf("sale %d has %d stored lines, %d pending do not make %d", sale.ID, len(stored), len(partial.Pending), partial.Expected),
			partial.Expected)
	}

	totals := make([]calculator.LineTotals, 0, expected)
	for _, line := range stored {
		totals = append(totals, calculator.LineTotals{Excl: line.LineExcl, GSTAmount: line.GSTAmount, Incl: line.LineIncl})
	}

	// Amounts are recomputed from quantity, price and rate; the caller's
	// figures are never stored.
	pending := make([]models.SaleItem, 0, len(partial.Pending))
	for i, line := range partial.Pending {
		if line.ItemID <= 0 {
			return nil, models.NewValidationError(fmt.Sprintf("pending[%d].item_id", i), "missing item", line.ItemID)
		}
		pl := PreviewLine{ItemID: line.ItemID, Quantity: line.Quantity, UnitPrice: line.UnitPrice, GSTRate: line.GSTRate}
		if err := s.applyNumericPolicy("pending", i, &pl); err != nil {
			return nil, err
		}
		lineTotals := calculator.ComputeLine(pl.Quantity, pl.UnitPrice, pl.GSTRate)
		totals = append(totals, lineTotals)
		pending = append(pending, models.SaleItem{
			SaleID:    sale.ID,
			ItemID:    pl.ItemID,
			Quantity:  pl.Quantity,
			UnitPrice: pl.UnitPrice,
			GSTRate:   pl.GSTRate,
			GSTAmount: lineTotals.GSTAmount,
			LineExcl:  lineTotals.Excl,
			LineIncl:  lineTotals.Incl,
		})
	}

	aggregate := calculator.Aggregate(totals)
	if !sameAmount(aggregate.TotalAmount, sale.TotalAmount) || !sameAmount(aggregate.TotalGST, sale.TotalGST) {
		return nil, models.NewValidationError("pending",
			fmt.Sprintf("lines total %.2f (gst %.2f), sale %d records %.2f (gst %.2f)",
				calculator.Round2(aggregate.TotalAmount), calculator.Round2(aggregate.TotalGST),
				sale.ID, sale.TotalAmount, sale.TotalGST),
			nil)
	}

	for i := range pending {
		if _, err := s.saleItems.Create(ctx, &pending[i]); err != nil {
			return nil, &PartialCommitError{
				SaleID:   sale.ID,
				Written:  len(stored) + i,
				Expected: expected,
				Pending:  append([]models.SaleItem(nil), pending[i:]...),
				Cause:    err,
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"sale_id": sale.ID,
		"lines":   len(pending),
	}).Info("Partial sale completed")
	return s.GetSale(ctx, sale.ID)
}

// sameAmount compares an unrounded sum with a stored 2dp total
func sameAmount(sum, stored float64) bool {
	return math.Abs(calculator.Round2(sum)-stored) < 0.005
}

// GetSale retrieves a sale with its lines
func (s *saleService) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	lines, err := s.saleItems.ListBySale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale lines: %w", err)
	}

	sale.Items = make([]models.SaleItem, 0, len(lines))
	for _, line := range lines {
		sale.Items = append(sale.Items, *line)
	}
	return sale, nil
}

// ListSales retrieves all sale headers
func (s *saleService) ListSales(ctx context.Context) ([]*models.Sale, error) {
	sales, err := s.sales.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// commit validates the candidate lines, then writes the sale header and
// its lines in order
func (s *saleService) commit(ctx context.Context, catalog *Catalog, customerID int64, lines []SaleLineRequest) (*models.Sale, error) {
	sale, saleItems, err := s.build(ctx, catalog, customerID, lines)
	if err != nil {
		return nil, err
	}

	// A number drawn here is not returned if the header write fails, so a
	// day's sequence may have gaps.
	now := s.clock.Now()
	invoiceNo, err := s.numberer.Next(ctx, now)
	if err != nil {
		return nil, err
	}
	sale.InvoiceNo = invoiceNo
	sale.SaleDate = models.FormatTimestamp(now)

	saleID, err := s.sales.Create(ctx, sale)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	for i := range saleItems {
		saleItems[i].SaleID = saleID
		if _, err := s.saleItems.Create(ctx, &saleItems[i]); err != nil {
			sale.Items = append([]models.SaleItem(nil), saleItems[:i]...)
			s.logger.WithFields(logrus.Fields{
				"sale_id":  saleID,
				"written":  i,
				"expected": len(saleItems),
			}).WithError(err).Error("Sale partially committed")
			return sale, &PartialCommitError{
				SaleID:   saleID,
				Written:  i,
				Expected: len(saleItems),
				Pending:  append([]models.SaleItem(nil), saleItems[i:]...),
				Cause:    err,
			}
		}
	}

	sale.Items = saleItems
	s.logger.WithFields(logrus.Fields{
		"sale_id":    saleID,
		"invoice_no": sale.InvoiceNo,
		"lines":      len(saleItems),
	}).Info("Sale created")
	return sale, nil
}

// build validates a draft and computes its sale and lines without writing
func (s *saleService) build(ctx context.Context, catalog *Catalog, customerID int64, lines []SaleLineRequest) (*models.Sale, []models.SaleItem, error) {
	if customerID <= 0 {
		return nil, nil, models.NewValidationError("customer_id", "missing customer", customerID)
	}

	selected := make([]int, 0, len(lines))
	for i, line := range lines {
		if line.ItemID > 0 {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return nil, nil, models.NewValidationError("lines", "no items", nil)
	}

	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, models.NewValidationError("customer_id",
				fmt.Sprintf("customer %d does not exist", customerID), customerID)
		}
		return nil, nil, fmt.Errorf("failed to get customer: %w", err)
	}

	saleItems := make([]models.SaleItem, 0, len(selected))
	totals := make([]calculator.LineTotals, 0, len(selected))

	for _, idx := range selected {
		line := lines[idx]
		if _, ok := catalog.Lookup(line.ItemID); !ok {
			return nil, nil, models.NewValidationError(fmt.Sprintf("lines[%d].item_id", idx),
				fmt.Sprintf("item %d does not exist", line.ItemID), line.ItemID)
		}

		pl := resolveLine(catalog, line)
		if err := s.applyNumericPolicy("lines", idx, &pl); err != nil {
			return nil, nil, err
		}

		lineTotals := calculator.ComputeLine(pl.Quantity, pl.UnitPrice, pl.GSTRate)
		totals = append(totals, lineTotals)
		saleItems = append(saleItems, models.SaleItem{
			ItemID:    pl.ItemID,
			Quantity:  pl.Quantity,
			UnitPrice: pl.UnitPrice,
			GSTRate:   pl.GSTRate,
			GSTAmount: lineTotals.GSTAmount,
			LineExcl:  lineTotals.Excl,
			LineIncl:  lineTotals.Incl,
		})
	}

	aggregate := calculator.Aggregate(totals)
	sale := &models.Sale{
		CustomerID:  customerID,
		TotalGST:    calculator.Round2(aggregate.TotalGST),
		TotalAmount: calculator.Round2(aggregate.TotalAmount),
	}

	return sale, saleItems, nil
}

// applyNumericPolicy rejects invalid line numbers, or zeroes them in
// legacy mode
func (s *saleService) applyNumericPolicy(group string, idx int, pl *PreviewLine) error {
	if s.legacy {
		pl.Quantity = calculator.Coerce(pl.Quantity)
		pl.UnitPrice = calculator.Coerce(pl.UnitPrice)
		pl.GSTRate = calculator.Coerce(pl.GSTRate)
		return nil
	}

	field := func(name string) string { return fmt.Sprintf("%s[%d].%s", group, idx, name) }
	if err := models.ValidatePositive(pl.Quantity, field("quantity")); err != nil {
		return err
	}
	if err := models.ValidateAmount(pl.UnitPrice, field("unit_price")); err != nil {
		return err
	}
	return models.ValidateAmount(pl.GSTRate, field("gst_rate"))
}
