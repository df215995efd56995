package sqlite

import (
	"context"
	"database/sql"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

var paymentTable = tableSpec[models.Payment]{
	table:   models.CollectionPayments,
	columns: []string{"customer_id", "sale_id", "payment_date", "amount", "note"},
	values: func(p *models.Payment) []interface{} {
		var saleID interface{}
		if p.SaleID != nil {
			saleID = *p.SaleID
		}
		return []interface{}{p.CustomerID, saleID, p.PaymentDate, p.Amount, p.Note}
	},
	scan: func(row rowScanner) (*models.Payment, error) {
		p := &models.Payment{}
		var saleID sql.NullInt64
		err := row.Scan(&p.ID, &p.CustomerID, &saleID, &p.PaymentDate, &p.Amount, &p.Note)
		if err != nil {
			return nil, err
		}
		if saleID.Valid {
			id := saleID.Int64
			p.SaleID = &id
		}
		return p, nil
	},
	getID: func(p *models.Payment) int64 { return p.ID },
	setID: func(p *models.Payment, id int64) { p.ID = id },
}

// PaymentRepository stores payments in SQLite
type PaymentRepository struct {
	*BaseRepository[models.Payment]
}

// NewPaymentRepository creates a new SQLite payment repository
func NewPaymentRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *PaymentRepository {
	return &PaymentRepository{
		BaseRepository: NewBaseRepository(db, paymentTable, config, logger),
	}
}

// ListByCustomer retrieves a customer's payments
func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*models.Payment, error) {
	return r.listWhere(ctx, "list_by_customer", "customer_id", customerID)
}
