package sqlite

import (
	"context"
	"database/sql"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

var saleItemTable = tableSpec[models.SaleItem]{
	table: models.CollectionSaleItems,
	columns: []string{
		"sale_id", "item_id", "quantity", "unit_price",
		"gst_rate", "gst_amount", "line_excl", "line_incl",
	},
	values: func(si *models.SaleItem) []interface{} {
		return []interface{}{
			si.SaleID, si.ItemID, si.Quantity, si.UnitPrice,
			si.GSTRate, si.GSTAmount, si.LineExcl, si.LineIncl,
		}
	},
	scan: func(row rowScanner) (*models.SaleItem, error) {
		si := &models.SaleItem{}
		err := row.Scan(
			&si.ID, &si.SaleID, &si.ItemID, &si.Quantity, &si.UnitPrice,
			&si.GSTRate, &si.GSTAmount, &si.LineExcl, &si.LineIncl,
		)
		if err != nil {
			return nil, err
		}
		return si, nil
	},
	getID: func(si *models.SaleItem) int64 { return si.ID },
	setID: func(si *models.SaleItem, id int64) { si.ID = id },
}

// SaleItemRepository stores sale lines in SQLite
type SaleItemRepository struct {
	*BaseRepository[models.SaleItem]
}

// NewSaleItemRepository creates a new SQLite sale line repository
func NewSaleItemRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *SaleItemRepository {
	return &SaleItemRepository{
		BaseRepository: NewBaseRepository(db, saleItemTable, config, logger),
	}
}

// ListBySale retrieves the lines of a sale
func (r *SaleItemRepository) ListBySale(ctx context.Context, saleID int64) ([]*models.SaleItem, error) {
	return r.listWhere(ctx, "list_by_sale", "sale_id", saleID)
}
