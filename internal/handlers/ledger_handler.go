package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crm-ledger/internal/calculator"
	"crm-ledger/internal/services"
)

// LedgerHandler serves balances, reports and the data wipe
type LedgerHandler struct {
	ledgerService services.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// BalanceResponse is a customer balance with its classification
type BalanceResponse struct {
	calculator.CustomerBalance
	Status calculator.BalanceStatus `json:"status"`
}

// @Summary Customer balances
// @Description Net balance of every customer in customer order
// @Tags ledger
// @Produce json
// @Success 200 {array} BalanceResponse
// @Router /balances [get]
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	balances, err := h.ledgerService.ComputeBalances(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		response = append(response, BalanceResponse{CustomerBalance: b, Status: b.Status()})
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Dashboard statistics
// @Tags ledger
// @Produce json
// @Success 200 {object} models.Stats
// @Router /stats [get]
func (h *LedgerHandler) GetStats(c *gin.Context) {
	stats, err := h.ledgerService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Monthly sales report
// @Tags reports
// @Produce json
// @Param period query string true "Month as YYYY-MM"
// @Success 200 {object} calculator.SalesSummary
// @Failure 400 {object} ErrorResponse
// @Router /reports/monthly [get]
func (h *LedgerHandler) GetMonthlyReport(c *gin.Context) {
	summary, err := h.ledgerService.MonthlyReport(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Quarterly sales report
// @Description Fiscal quarters run April to March; Q4 is January to March of the given year
// @Tags reports
// @Produce json
// @Param quarter query int true "Fiscal quarter (1-4)"
// @Param year query int true "Year"
// @Success 200 {object} calculator.SalesSummary
// @Failure 400 {object} ErrorResponse
// @Router /reports/quarterly [get]
func (h *LedgerHandler) GetQuarterlyReport(c *gin.Context) {
	quarter, err := strconv.Atoi(c.Query("quarter"))
	if err != nil {
		respondBadRequest(c, "Invalid quarter", "quarter must be an integer between 1 and 4")
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondBadRequest(c, "Invalid year", "year must be an integer")
		return
	}

	summary, err := h.ledgerService.QuarterlyReport(c.Request.Context(), quarter, year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Wipe all data
// @Description Irrecoverably delete every customer, item, sale and payment
// @Tags ledger
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /data [delete]
func (h *LedgerHandler) WipeAll(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))

	if err := h.ledgerService.WipeAll(c.Request.Context(), confirm); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
