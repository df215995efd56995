package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"crm-ledger/internal/models"
)

var (
	// ErrDraftCommitted is returned when a committed sale draft is used again
	ErrDraftCommitted = errors.New("sale draft already committed")

	// ErrConfirmationRequired is returned when a destructive operation is
	// called without explicit confirmation
	ErrConfirmationRequired = errors.New("confirmation required")
)

// PartialCommitError reports a sale whose header was persisted but whose
// lines were only partly written. Pending holds the lines still missing, so
// the caller can retry them with CompletePartialSale.
type PartialCommitError struct {
	SaleID   int64             `json:"sale_id"`
	Written  int               `json:"written"`
	Expected int               `json:"expected"`
	Pending  []models.SaleItem `json:"pending"`
	Cause    error             `json:"-"`
}

// Error implements the error interface
func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("sale %d partially committed: %d of %d lines written: %v",
		e.SaleID, e.Written, e.Expected, e.Cause)
}

// Unwrap returns the underlying error
func (e *PartialCommitError) Unwrap() error {
	return e.Cause
}

// IsPartialCommit checks if an error is a partial commit error
func IsPartialCommit(err error) bool {
	var pe *PartialCommitError
	return errors.As(err, &pe)
}

// AsPartialCommit extracts a partial commit error
func AsPartialCommit(err error) (*PartialCommitError, bool) {
	var pe *PartialCommitError
	ok := errors.As(err, &pe)
	return pe, ok
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return models.IsValidationError(err)
}

// newValidator creates a validator reporting fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validationFailed converts struct validation errors to a ValidationError
func validationFailed(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return models.NewValidationError(fe.Field(), validationMessage(fe), fe.Value())
	}
	return models.NewValidationError("", err.Error(), nil)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email format"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the '%s' rule", fe.Field(), fe.Tag())
	}
}
