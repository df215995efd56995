package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// SanitizeString removes extra whitespace and trims the string
func SanitizeString(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}
	return nil
}

// ValidateEmail validates email format and returns a validation error if invalid
func ValidateEmail(email, fieldName string) error {
	if email == "" {
		return nil // Optional field
	}

	if !isValidEmail(email) {
		return &ValidationError{
			Field:   fieldName,
			Message: "Invalid email format",
			Value:   email,
		}
	}

	return nil
}

// ValidateFinite rejects NaN and infinite values
func ValidateFinite(value float64, fieldName string) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " must be a number",
			Value:   fmt.Sprint(value),
		}
	}
	return nil
}

// ValidateAmount validates that a number is finite and not negative
func ValidateAmount(value float64, fieldName string) error {
	if err := ValidateFinite(value, fieldName); err != nil {
		return err
	}
	if value < 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " cannot be negative",
			Value:   value,
		}
	}
	return nil
}

// ValidatePositive validates that a number is finite and greater than 0
func ValidatePositive(value float64, fieldName string) error {
	if err := ValidateFinite(value, fieldName); err != nil {
		return err
	}
	if value <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " must be greater than 0",
			Value:   value,
		}
	}
	return nil
}

// IsValidationError reports whether err is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
