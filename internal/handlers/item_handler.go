package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-ledger/internal/services"
)

// ItemHandler handles catalog item requests
type ItemHandler struct {
	itemService services.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// @Summary Create an item
// @Tags items
// @Accept json
// @Produce json
// @Param item body services.CreateItemRequest true "Item data"
// @Success 201 {object} models.Item
// @Failure 400 {object} ErrorResponse
// @Router /items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// @Summary List items
// @Tags items
// @Produce json
// @Success 200 {array} models.Item
// @Router /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	items, err := h.itemService.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary Get an item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.Item
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// @Summary Update an item
// @Description Reprice or rename an item. Existing sales keep their prices.
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param item body services.UpdateItemRequest true "Updated item data"
// @Success 200 {object} models.Item
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// @Summary Delete an item
// @Tags items
// @Param id path int true "Item ID"
// @Success 204
// @Router /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.itemService.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
