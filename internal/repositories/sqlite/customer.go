package sqlite

import (
	"database/sql"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

var customerTable = tableSpec[models.Customer]{
	table:   models.CollectionCustomers,
	columns: []string{"name", "contact", "email", "address", "created_at"},
	values: func(c *models.Customer) []interface{} {
		return []interface{}{c.Name, c.Contact, c.Email, c.Address, c.CreatedAt}
	},
	scan: func(row rowScanner) (*models.Customer, error) {
		c := &models.Customer{}
		err := row.Scan(&c.ID, &c.Name, &c.Contact, &c.Email, &c.Address, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
	getID: func(c *models.Customer) int64 { return c.ID },
	setID: func(c *models.Customer, id int64) { c.ID = id },
}

// CustomerRepository stores customers in SQLite
type CustomerRepository struct {
	*BaseRepository[models.Customer]
}

// NewCustomerRepository creates a new SQLite customer repository
func NewCustomerRepository(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *CustomerRepository {
	return &CustomerRepository{
		BaseRepository: NewBaseRepository(db, customerTable, config, logger),
	}
}
