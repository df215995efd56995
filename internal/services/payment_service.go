package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"crm-ledger/internal/calculator"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
)

// paymentService implements the PaymentService interface
type paymentService struct {
	customers repositories.Collection[models.Customer]
	sales     repositories.SaleCollection
	payments  repositories.PaymentCollection
	clock     *models.Clock
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewPaymentService creates a new payment service instance
func NewPaymentService(store repositories.Store, clock *models.Clock, logger *logrus.Logger) PaymentService {
	return &paymentService{
		customers: store.Customers(),
		sales:     store.Sales(),
		payments:  store.Payments(),
		clock:     clock,
		validator: newValidator(),
		logger:    logger,
	}
}

// RecordPayment records money received from a customer. The amount must be
// non-zero; negative amounts record refunds. A referenced sale must belong
// to the customer.
func (s *paymentService) RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*models.Payment, error) {
	if req == nil {
		return nil, models.NewValidationError("", "record payment request cannot be nil", nil)
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	if err := models.ValidateFinite(req.Amount, "amount"); err != nil {
		return nil, err
	}
	amount := calculator.Round2(req.Amount)
	if amount == 0 {
		return nil, models.NewValidationError("amount", "amount is required", req.Amount)
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewValidationError("customer_id",
				fmt.Sprintf("customer %d does not exist", req.CustomerID), req.CustomerID)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	payment := &models.Payment{
		CustomerID:  req.CustomerID,
		PaymentDate: s.clock.Stamp(),
		Amount:      amount,
		Note:        models.SanitizeString(req.Note),
	}

	if req.SaleID != nil && *req.SaleID != 0 {
		saleID := *req.SaleID
		sale, err := s.sales.GetByID(ctx, saleID)
		if err != nil {
			if repositories.IsNotFound(err) || repositories.IsInvalidID(err) {
				return nil, models.NewValidationError("sale_id",
					fmt.Sprintf("sale %d does not exist", saleID), saleID)
			}
			return nil, fmt.Errorf("failed to get sale: %w", err)
		}
		if sale.CustomerID != req.CustomerID {
			return nil, models.NewValidationError("sale_id",
				fmt.Sprintf("sale %d does not belong to customer %d", saleID, req.CustomerID), saleID)
		}
		payment.SaleID = &saleID
	}

	if _, err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":  payment.ID,
		"customer_id": payment.CustomerID,
		"amount":      payment.Amount,
	}).Info("Payment recorded")
	return payment, nil
}

// ListPayments retrieves all payments
func (s *paymentService) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	payments, err := s.payments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
