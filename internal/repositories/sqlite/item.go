package sqlite

import (
	"database/sql"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

var itemTable = tableSpec[models.Item]{
	table:   models.CollectionItems,
	columns: []string{"name", "description", "price", "gst_rate", "created_at"},
	values: func(i *models.Item) []interface{} {
		return []interface{}{i.Name, i.Description, i.Price, i.GSTRate, i.CreatedAt}
	},
	scan: func(row rowScanner) (*models.Item, error) {
		i := &models.Item{}
		err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Price, &i.GSTRate, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		return i, nil
	},
	getID: func(i *models.Item) int64 { return i.ID },
	setID: func(i *models.Item, id int64) { i.ID = id },
}

// ItemRepository stores catalog items in SQLite
type ItemRepository struct {
	*BaseRepository[models.Item]
}

// NewItemRepository creates a new SQLite item repository
func NewItemRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *ItemRepository {
	return &ItemRepository{
		BaseRepository: NewBaseRepository(db, itemTable, config, logger),
	}
}
