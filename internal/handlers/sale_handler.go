package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-ledger/internal/models"
	"crm-ledger/internal/services"
)

// SaleHandler handles sale entry and lookup
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// CompleteSaleRequest carries the lines a partial commit left pending
type CompleteSaleRequest struct {
	Written  int               `json:"written"`
	Expected int               `json:"expected"`
	Pending  []models.SaleItem `json:"pending"`
}

// @Summary Create a sale
// @Description Validate the lines, assign an invoice number and persist the sale
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body services.CreateSaleRequest true "Sale data"
// @Success 201 {object} models.Sale
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Sale partially saved; details list the pending lines"
// @Router /sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// @Summary Preview a sale
// @Description Compute line and sale totals without saving anything
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body services.CreateSaleRequest true "Candidate sale"
// @Success 200 {object} services.SalePreview
// @Router /sales/preview [post]
func (h *SaleHandler) PreviewSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	preview, err := h.saleService.PreviewSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// @Summary Complete a partially saved sale
// @Description Write the pending lines reported by a failed sale commit. Line amounts are
// @Description recomputed and must complete the totals recorded on the sale.
// @Tags sales
// @Accept json
// @Produce json
// @Param id path int true "Sale ID"
// @Param lines body CompleteSaleRequest true "Pending lines"
// @Success 200 {object} models.Sale
// @Router /sales/{id}/complete [post]
func (h *SaleHandler) CompleteSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CompleteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	sale, err := h.saleService.CompletePartialSale(c.Request.Context(), &services.PartialCommitError{
		SaleID:   id,
		Written:  req.Written,
		Expected: req.Expected,
		Pending:  req.Pending,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// @Summary List sales
// @Tags sales
// @Produce json
// @Success 200 {array} models.Sale
// @Router /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	sales, err := h.saleService.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sales)
}

// @Summary Get a sale
// @Description Get a sale with its lines
// @Tags sales
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} models.Sale
// @Failure 404 {object} ErrorResponse
// @Router /sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}
