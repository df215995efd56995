package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	CustomerService CustomerService
	ItemService     ItemService
	SaleService     SaleService
	PaymentService  PaymentService
	LedgerService   LedgerService
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	Clock                 *models.Clock
	InvoicePrefix         string
	LegacyNumericCoercion bool
	Logger                *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(store repositories.Store, config *ServiceConfig) (*ServiceContainer, error) {
	if store == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}

	if config == nil {
		config = &ServiceConfig{}
	}

	clock := config.Clock
	if clock == nil {
		var err error
		clock, err = models.LoadClock(models.DefaultTimeZone)
		if err != nil {
			return nil, fmt.Errorf("failed to create clock: %w", err)
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	numberer := NewInvoiceNumberer(store, config.InvoicePrefix)

	return &ServiceContainer{
		CustomerService: NewCustomerService(store.Customers(), clock, logger),
		ItemService:     NewItemService(store.Items(), clock, config.LegacyNumericCoercion, logger),
		SaleService:     NewSaleService(store, numberer, clock, config.LegacyNumericCoercion, logger),
		PaymentService:  NewPaymentService(store, clock, logger),
		LedgerService:   NewLedgerService(store, clock, logger),
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.CustomerService == nil {
		return fmt.Errorf("customer service is nil")
	}
	if sc.ItemService == nil {
		return fmt.Errorf("item service is nil")
	}
	if sc.SaleService == nil {
		return fmt.Errorf("sale service is nil")
	}
	if sc.PaymentService == nil {
		return fmt.Errorf("payment service is nil")
	}
	if sc.LedgerService == nil {
		return fmt.Errorf("ledger service is nil")
	}

	return nil
}
