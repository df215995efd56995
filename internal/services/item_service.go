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

// itemService implements the ItemService interface
type itemService struct {
	items     repositories.Collection[models.Item]
	clock     *models.Clock
	legacy    bool
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewItemService creates a new item service instance. With legacy set,
// invalid prices and rates are stored as 0 instead of being rejected.
func NewItemService(items repositories.Collection[models.Item], clock *models.Clock, legacy bool, logger *logrus.Logger) ItemService {
	return &itemService{
		items:     items,
		clock:     clock,
		legacy:    legacy,
		validator: newValidator(),
		logger:    logger,
	}
}

// CreateItem creates a new catalog item
func (s *itemService) CreateItem(ctx context.Context, req *CreateItemRequest) (*models.Item, error) {
	if req == nil {
		return nil, models.NewValidationError("", "create item request cannot be nil", nil)
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	item := models.NewItem(req.Name, req.Description, req.Price, req.GSTRate, s.clock.Stamp())
	if err := s.normalize(item); err != nil {
		return nil, err
	}

	if _, err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.WithField("item_id", item.ID).Info("Item created")
	return item, nil
}

// GetItem retrieves an item by ID
func (s *itemService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// UpdateItem updates an existing item. Sale lines keep the price and rate
// they were sold at.
func (s *itemService) UpdateItem(ctx context.Context, id int64, req *UpdateItemRequest) (*models.Item, error) {
	if req == nil {
		return nil, models.NewValidationError("", "update item request cannot be nil", nil)
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, price, rate := item.Name, item.Description, item.Price, item.GSTRate
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.GSTRate != nil {
		rate = *req.GSTRate
	}

	updated := models.NewItem(name, description, price, rate, item.CreatedAt)
	updated.ID = item.ID
	if err := s.normalize(updated); err != nil {
		return nil, err
	}

	if err := s.items.Upsert(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return updated, nil
}

// DeleteItem deletes an item by ID
func (s *itemService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.items.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.WithField("item_id", id).Info("Item deleted")
	return nil
}

// ListItems retrieves all items
func (s *itemService) ListItems(ctx context.Context) ([]*models.Item, error) {
	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Catalog returns a snapshot of the current catalog
func (s *itemService) Catalog(ctx context.Context) (*Catalog, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(items), nil
}

// normalize applies the numeric policy and validates the item
func (s *itemService) normalize(item *models.Item) error {
	if s.legacy {
		item.Price = calculator.Coerce(item.Price)
		item.GSTRate = calculator.Coerce(item.GSTRate)
	}
	return item.Validate()
}
