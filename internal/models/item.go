package models

import (
	"strings"
)

// Item represents a catalog entry. Price is the tax-exclusive unit price and
// GSTRate is a percentage.
type Item struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name" validate:"required"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price" validate:"min=0"`
	GSTRate     float64 `json:"gst_rate" db:"gst_rate" validate:"min=0"`
	CreatedAt   string  `json:"created_at" db:"created_at"`
}

// NewItem creates a new catalog item stamped with the given creation time
func NewItem(name, description string, price, gstRate float64, createdAt string) *Item {
	return &Item{
		Name:        SanitizeString(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		GSTRate:     gstRate,
		CreatedAt:   createdAt,
	}
}

// Validate validates the item data
func (i *Item) Validate() error {
	if err := ValidateRequired(i.Name, "name"); err != nil {
		return err
	}
	if err := ValidateAmount(i.Price, "price"); err != nil {
		return err
	}
	return ValidateAmount(i.GSTRate, "gst_rate")
}
