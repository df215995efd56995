package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"crm-ledger/internal/calculator"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
)

// ledgerService implements the LedgerService interface. Every view is
// recomputed from the store on each call.
type ledgerService struct {
	store  repositories.Store
	clock  *models.Clock
	logger *logrus.Logger
}

// NewLedgerService creates a new ledger service instance
func NewLedgerService(store repositories.Store, clock *models.Clock, logger *logrus.Logger) LedgerService {
	return &ledgerService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// ComputeBalances aggregates every customer's sales and payments
func (s *ledgerService) ComputeBalances(ctx context.Context) ([]calculator.CustomerBalance, error) {
	customers, err := s.store.Customers().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	sales, err := s.store.Sales().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	payments, err := s.store.Payments().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	return calculator.ComputeBalances(customers, sales, payments), nil
}

// CustomerStatement returns a customer with its sales, payments and net
func (s *ledgerService) CustomerStatement(ctx context.Context, customerID int64) (*CustomerStatement, error) {
	customer, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	sales, err := s.store.Sales().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer sales: %w", err)
	}

	payments, err := s.store.Payments().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer payments: %w", err)
	}

	balance := calculator.ComputeBalances([]*models.Customer{customer}, sales, payments)[0]

	return &CustomerStatement{
		Customer:      customer,
		Sales:         sales,
		Payments:      payments,
		TotalSales:    balance.TotalSales,
		TotalPayments: balance.TotalPayments,
		Net:           balance.Net,
		Status:        balance.Status(),
	}, nil
}

// Stats returns record counts and total receivables
func (s *ledgerService) Stats(ctx context.Context) (*models.Stats, error) {
	customers, err := s.store.Customers().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	items, err := s.store.Items().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	sales, err := s.store.Sales().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	payments, err := s.store.Payments().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	return &models.Stats{
		Customers:   customers,
		Items:       items,
		Sales:       len(sales),
		Payments:    len(payments),
		Receivables: calculator.Receivables(sales, payments),
	}, nil
}

// MonthlyReport totals the sales of a YYYY-MM period
func (s *ledgerService) MonthlyReport(ctx context.Context, period string) (*calculator.SalesSummary, error) {
	month, err := time.ParseInLocation("2006-01", period, s.clock.Location())
	if err != nil {
		return nil, models.NewValidationError("period", "period must be formatted YYYY-MM", period)
	}

	start, end := calculator.MonthRange(month.Year(), month.Month(), s.clock.Location())
	return s.summarize(ctx, period, start, end)
}

// QuarterlyReport totals the sales of a fiscal quarter
func (s *ledgerService) QuarterlyReport(ctx context.Context, quarter, year int) (*calculator.SalesSummary, error) {
	if year < 1 {
		return nil, models.NewValidationError("year", "year is required", year)
	}

	start, end, err := calculator.FiscalQuarterRange(quarter, year, s.clock.Location())
	if err != nil {
		return nil, models.NewValidationError("quarter", err.Error(), quarter)
	}

	return s.summarize(ctx, fmt.Sprintf("Q%d-%d", quarter, year), start, end)
}

func (s *ledgerService) summarize(ctx context.Context, period string, start, end time.Time) (*calculator.SalesSummary, error) {
	sales, err := s.store.Sales().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	summary := calculator.SummarizeSales(period, sales, start, end)
	if summary.Unparsed > 0 {
		s.logger.WithFields(logrus.Fields{
			"period":   period,
			"unparsed": summary.Unparsed,
		}).Warn("Sales with unreadable dates skipped")
	}
	return &summary, nil
}

// WipeAll irrecoverably deletes every record
func (s *ledgerService) WipeAll(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}

	if err := s.store.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to wipe ledger: %w", err)
	}
	return nil
}
