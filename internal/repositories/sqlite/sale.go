package sqlite

import (
	"context"
	"database/sql"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

var saleTable = tableSpec[models.Sale]{
	table:   models.CollectionSales,
	columns: []string{"invoice_no", "sale_date", "customer_id", "total_amount", "total_gst"},
	values: func(s *models.Sale) []interface{} {
		return []interface{}{s.InvoiceNo, s.SaleDate, s.CustomerID, s.TotalAmount, s.TotalGST}
	},
	scan: func(row rowScanner) (*models.Sale, error) {
		s := &models.Sale{}
		err := row.Scan(&s.ID, &s.InvoiceNo, &s.SaleDate, &s.CustomerID, &s.TotalAmount, &s.TotalGST)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
	getID: func(s *models.Sale) int64 { return s.ID },
	setID: func(s *models.Sale, id int64) { s.ID = id },
}

// SaleRepository stores sale headers in SQLite
type SaleRepository struct {
	*BaseRepository[models.Sale]
}

// NewSaleRepository creates a new SQLite sale repository
func NewSaleRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *SaleRepository {
	return &SaleRepository{
		BaseRepository: NewBaseRepository(db, saleTable, config, logger),
	}
}

// ListByCustomer retrieves a customer's sales
func (r *SaleRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*models.Sale, error) {
	return r.listWhere(ctx, "list_by_customer", "customer_id", customerID)
}
