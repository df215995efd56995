package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
)

// customerService implements the CustomerService interface
type customerService struct {
	customers repositories.Collection[models.Customer]
	clock     *models.Clock
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewCustomerService creates a new customer service instance
func NewCustomerService(customers repositories.Collection[models.Customer], clock *models.Clock, logger *logrus.Logger) CustomerService {
	return &customerService{
		customers: customers,
		clock:     clock,
		validator: newValidator(),
		logger:    logger,
	}
}

// CreateCustomer creates a new customer
func (s *customerService) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error) {
	if req == nil {
		return nil, models.NewValidationError("", "create customer request cannot be nil", nil)
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	customer := models.NewCustomer(req.Name, req.Contact, req.Email, req.Address, s.clock.Stamp())
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.WithField("customer_id", customer.ID).Info("Customer created")
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *customerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// UpdateCustomer updates an existing customer. The creation time is kept.
func (s *customerService) UpdateCustomer(ctx context.Context, id int64, req *UpdateCustomerRequest) (*models.Customer, error) {
	if req == nil {
		return nil, models.NewValidationError("", "update customer request cannot be nil", nil)
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	name, contact, email, address := customer.Name, customer.Contact, customer.Email, customer.Address
	if req.Name != nil {
		name = *req.Name
	}
	if req.Contact != nil {
		contact = *req.Contact
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.Address != nil {
		address = *req.Address
	}

	updated := models.NewCustomer(name, contact, email, address, customer.CreatedAt)
	updated.ID = customer.ID

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.customers.Upsert(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return updated, nil
}

// DeleteCustomer deletes a customer by ID. The customer's sales and
// payments are kept and keep referencing the removed ID.
func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customers.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.WithField("customer_id", id).Info("Customer deleted")
	return nil
}

// ListCustomers retrieves all customers
func (s *customerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.customers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
