package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/backup"
	"crm-ledger/internal/middleware"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
	"crm-ledger/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Field     string      `json:"field,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error kind to its HTTP status and summary
func statusFor(err error) (int, string) {
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest, "Validation failed"
	case backup.IsParse(err):
		return http.StatusBadRequest, "Malformed backup document"
	case errors.Is(err, services.ErrConfirmationRequired):
		return http.StatusBadRequest, "Confirmation required"
	case repositories.IsInvalidID(err), storage.IsInvalidKey(err):
		return http.StatusBadRequest, "Invalid identifier"
	case errors.Is(err, services.ErrDraftCommitted):
		return http.StatusConflict, "Sale already committed"
	case services.IsPartialCommit(err):
		return http.StatusInternalServerError, "Sale partially saved"
	case backup.IsPartialImport(err):
		return http.StatusInternalServerError, "Import partially applied"
	case repositories.IsNotFound(err), storage.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case repositories.IsStorage(err):
		return http.StatusServiceUnavailable, "Storage unavailable"
	default:
		var storageErr *storage.StorageError
		if errors.As(err, &storageErr) {
			return http.StatusServiceUnavailable, "Backup storage unavailable"
		}
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes the response for err. Partial commits and imports
// carry what was persisted in Details.
func respondError(c *gin.Context, err error) {
	status, summary := statusFor(err)

	response := ErrorResponse{
		Error:     summary,
		Message:   err.Error(),
		RequestID: c.GetString(middleware.RequestIDKey),
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		response.Field = ve.Field
		response.Message = ve.Message
	}
	if pe, ok := services.AsPartialCommit(err); ok {
		response.Details = pe
	}
	if pe, ok := backup.AsPartialImport(err); ok {
		response.Details = pe
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.JSON(status, response)
}

// respondBadRequest writes a 400 for malformed input
func respondBadRequest(c *gin.Context, summary, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     summary,
		Message:   message,
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}

// parseID reads a positive integer path parameter, writing a 400 when it
// is malformed
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid "+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
