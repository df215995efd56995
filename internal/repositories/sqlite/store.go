package sqlite

import (
	"context"
	"database/sql"
	"time"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Store implements repositories.Store on a SQLite database
type Store struct {
	db        *sql.DB
	config    *repositories.Config
	logger    *logrus.Logger
	customers *CustomerRepository
	items     *ItemRepository
	sales     *SaleRepository
	saleItems *SaleItemRepository
	payments  *PaymentRepository
}

var _ repositories.Store = (*Store)(nil)

// NewStore creates a record store over an open, migrated database. The
// store takes ownership of db and closes it in Close.
func NewStore(db *sql.DB, config *repositories.Config, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = repositories.DefaultConfig()
	}

	return &Store{
		db:        db,
		config:    config,
		logger:    logger,
		customers: NewCustomerRepository(db, config, logger),
		items:     NewItemRepository(db, config, logger),
		sales:     NewSaleRepository(db, config, logger),
		saleItems: NewSaleItemRepository(db, config, logger),
		payments:  NewPaymentRepository(db, config, logger),
	}
}

// Customers returns the customer collection
func (s *Store) Customers() repositories.Collection[models.Customer] {
	return s.customers
}

// Items returns the item collection
func (s *Store) Items() repositories.Collection[models.Item] {
	return s.items
}

// Sales returns the sale collection
func (s *Store) Sales() repositories.SaleCollection {
	return s.sales
}

// SaleItems returns the sale line collection
func (s *Store) SaleItems() repositories.SaleItemCollection {
	return s.saleItems
}

// Payments returns the payment collection
func (s *Store) Payments() repositories.PaymentCollection {
	return s.payments
}

// NextInvoiceSequence atomically increments the counter for day
func (s *Store) NextInvoiceSequence(ctx context.Context, day string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	query := `
		INSERT INTO invoice_counters (day, last_seq) VALUES (?, 1)
		ON CONFLICT(day) DO UPDATE SET last_seq = last_seq + 1
		RETURNING last_seq`

	start := time.Now()
	var seq int
	err := s.db.QueryRowContext(ctx, query, day).Scan(&seq)
	s.logStatement("next_invoice_sequence", "invoice_counters", time.Since(start), err)
	if err != nil {
		return 0, repositories.NewRepositoryError("next_invoice_sequence", "invoice_counters", 0, err)
	}

	return seq, nil
}

// resetTables lists every table cleared by ResetAll
var resetTables = append(append([]string{}, models.Collections...), "invoice_counters")

// ResetAll deletes every record, counter and autoincrement sequence
func (s *Store) ResetAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	start := time.Now()
	err := s.resetAll(ctx)
	s.logStatement("reset_all", "*", time.Since(start), err)
	if err != nil {
		return repositories.NewRepositoryError("reset_all", "*", 0, err)
	}

	s.logger.Warn("Record store wiped")
	return nil
}

func (s *Store) resetAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range resetTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	// sqlite_sequence only exists once an AUTOINCREMENT table has been written
	var hasSequence int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sqlite_sequence'").Scan(&hasSequence)
	if err != nil {
		return err
	}
	if hasSequence > 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence"); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Health checks the health of the database connection
func (s *Store) Health(ctx context.Context) error {
	if s.db == nil {
		return repositories.NewRepositoryError("health", "database", 0, sql.ErrConnDone)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return repositories.NewRepositoryError("health", "database", 0, err)
	}

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.NewRepositoryError("health", "database", 0, err)
	}

	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) logStatement(operation, table string, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     table,
		"duration":  duration,
	}
	if err != nil {
		fields["error"] = err.Error()
		s.logger.WithFields(fields).Error("Query failed")
		return
	}
	s.logger.WithFields(fields).Debug("Query executed")
}
