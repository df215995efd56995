package models

import (
	"strings"
)

// Customer represents a customer in the ledger
type Customer struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name" validate:"required"`
	Contact   string `json:"contact" db:"contact"`
	Email     string `json:"email" db:"email"`
	Address   string `json:"address" db:"address"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// NewCustomer creates a new customer stamped with the given creation time
func NewCustomer(name, contact, email, address, createdAt string) *Customer {
	return &Customer{
		Name:      SanitizeString(name),
		Contact:   strings.TrimSpace(contact),
		Email:     strings.TrimSpace(email),
		Address:   strings.TrimSpace(address),
		CreatedAt: createdAt,
	}
}

// Validate validates the customer data
func (c *Customer) Validate() error {
	if err := ValidateRequired(c.Name, "name"); err != nil {
		return err
	}
	return ValidateEmail(c.Email, "email")
}

// GetDisplayName returns the display name for the customer
func (c *Customer) GetDisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Unknown"
	}
	return c.Name
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
