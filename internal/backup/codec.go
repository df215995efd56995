package backup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
)

// Codec exports the record store to a Document and imports it back
type Codec struct {
	store  repositories.Store
	logger *logrus.Logger
}

// NewCodec creates a backup codec over the store
func NewCodec(store repositories.Store, logger *logrus.Logger) *Codec {
	if logger == nil {
		logger = logrus.New()
	}
	return &Codec{
		store:  store,
		logger: logger,
	}
}

// Export reads every collection into a document
func (c *Codec) Export(ctx context.Context) (*Document, error) {
	doc := NewDocument()

	customers, err := c.store.Customers().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export customers: %w", err)
	}
	for _, r := range customers {
		doc.Customers = append(doc.Customers, *r)
	}

	items, err := c.store.Items().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export items: %w", err)
	}
	for _, r := range items {
		doc.Items = append(doc.Items, *r)
	}

	sales, err := c.store.Sales().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export sales: %w", err)
	}
	for _, r := range sales {
		sale := *r
		sale.Items = nil
		doc.Sales = append(doc.Sales, sale)
	}

	saleItems, err := c.store.SaleItems().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export sale items: %w", err)
	}
	for _, r := range saleItems {
		doc.SaleItems = append(doc.SaleItems, *r)
	}

	payments, err := c.store.Payments().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export payments: %w", err)
	}
	for _, r := range payments {
		doc.Payments = append(doc.Payments, *r)
	}

	c.logger.WithFields(logrus.Fields{
		"customers":  len(doc.Customers),
		"items":      len(doc.Items),
		"sales":      len(doc.Sales),
		"sale_items": len(doc.SaleItems),
		"payments":   len(doc.Payments),
	}).Info("Backup exported")

	return doc, nil
}

// ExportJSON exports the store as an encoded document
func (c *Codec) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := c.Export(ctx)
	if err != nil {
		return nil, err
	}
	return Marshal(doc)
}

// ImportJSON parses data and imports it. A malformed document returns a
// ParseError before anything is written.
func (c *Codec) ImportJSON(ctx context.Context, data []byte, mode Mode) (*ImportResult, error) {
	doc, err := Parse(data)
	if err != nil {
		c.logger.WithError(err).Warn("Rejected malformed backup document")
		return nil, err
	}
	return c.Import(ctx, doc, mode)
}

// Import creates every record of the document as a new record, in the
// order customers, items, sales, sale items, payments. Importing the same
// document twice duplicates its records.
func (c *Codec) Import(ctx context.Context, doc *Document, mode Mode) (*ImportResult, error) {
	if doc == nil {
		return nil, &ParseError{Err: fmt.Errorf("no document")}
	}
	if mode == "" {
		mode = ModeRemap
	}
	if mode != ModeRemap && mode != ModeMerge {
		return nil, models.NewValidationError("mode", fmt.Sprintf("unknown import mode %q", mode), mode)
	}

	imp := &importer{
		codec:     c,
		remap:     mode == ModeRemap,
		result:    ImportResult{Mode: mode},
		customers: make(map[int64]int64, len(doc.Customers)),
		items:     make(map[int64]int64, len(doc.Items)),
		sales:     make(map[int64]int64, len(doc.Sales)),
	}

	if err := imp.run(ctx, doc); err != nil {
		c.logger.WithFields(logrus.Fields{
			"mode":    mode,
			"written": imp.result.Total(),
		}).WithError(err).Error("Backup import stopped")
		return &imp.result, err
	}

	c.logger.WithFields(logrus.Fields{
		"mode":     mode,
		"records":  imp.result.Total(),
		"dangling": imp.result.Dangling,
	}).Info("Backup imported")

	return &imp.result, nil
}

// importer carries the old to new id maps of one import
type importer struct {
	codec     *Codec
	remap     bool
	result    ImportResult
	customers map[int64]int64
	items     map[int64]int64
	sales     map[int64]int64
}

func (imp *importer) run(ctx context.Context, doc *Document) error {
	store := imp.codec.store

	for i := range doc.Customers {
		record := doc.Customers[i]
		id, err := store.Customers().Create(ctx, &record)
		if err != nil {
			return imp.fail(models.CollectionCustomers, i, err)
		}
		imp.customers[doc.Customers[i].ID] = id
		imp.result.Customers++
	}

	for i := range doc.Items {
		record := doc.Items[i]
		id, err := store.Items().Create(ctx, &record)
		if err != nil {
			return imp.fail(models.CollectionItems, i, err)
		}
		imp.items[doc.Items[i].ID] = id
		imp.result.Items++
	}

	for i := range doc.Sales {
		record := doc.Sales[i]
		record.Items = nil
		record.CustomerID = imp.resolve(imp.customers, record.CustomerID)
		id, err := store.Sales().Create(ctx, &record)
		if err != nil {
			return imp.fail(models.CollectionSales, i, err)
		}
		imp.sales[doc.Sales[i].ID] = id
		imp.result.Sales++
	}

	for i := range doc.SaleItems {
		record := doc.SaleItems[i]
		record.SaleID = imp.resolve(imp.sales, record.SaleID)
		record.ItemID = imp.resolve(imp.items, record.ItemID)
		if _, err := store.SaleItems().Create(ctx, &record); err != nil {
			return imp.fail(models.CollectionSaleItems, i, err)
		}
		imp.result.SaleItems++
	}

	for i := range doc.Payments {
		record := doc.Payments[i]
		record.CustomerID = imp.resolve(imp.customers, record.CustomerID)
		if record.SaleID != nil {
			saleID := imp.resolve(imp.sales, *record.SaleID)
			record.SaleID = &saleID
		}
		if _, err := store.Payments().Create(ctx, &record); err != nil {
			return imp.fail(models.CollectionPayments, i, err)
		}
		imp.result.Payments++
	}

	return nil
}

// resolve maps an old reference to its new id. In merge mode, and for ids
// absent from the document, the reference is kept as is.
func (imp *importer) resolve(ids map[int64]int64, old int64) int64 {
	if !imp.remap || old == 0 {
		return old
	}
	if id, ok := ids[old]; ok {
		return id
	}
	imp.result.Dangling++
	return old
}

func (imp *importer) fail(collection string, index int, err error) error {
	return &PartialImportError{
		Collection: collection,
		Index:      index,
		Written:    imp.result,
		Cause:      err,
	}
}
