package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-ledger/internal/services"
)

// PaymentHandler handles payment requests
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// @Summary Record a payment
// @Description Record a payment (or a negative adjustment) against a customer
// @Tags payments
// @Accept json
// @Produce json
// @Param payment body services.RecordPaymentRequest true "Payment data"
// @Success 201 {object} models.Payment
// @Failure 400 {object} ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// @Summary List payments
// @Tags payments
// @Produce json
// @Success 200 {array} models.Payment
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}
