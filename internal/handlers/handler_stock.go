package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// stockHandler handles HTTP requests related to product stock.
type stockHandler struct {
	stockService portssvc.StockLedgerSvcFacade
}

func newStockHandler(ss portssvc.StockLedgerSvcFacade) *stockHandler {
	return &stockHandler{stockService: ss}
}

// RegisterStockRoutes registers routes related to product stock.
func RegisterStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockLedgerSvcFacade, writes ...gin.HandlerFunc) {
	h := newStockHandler(stockService)

	stock := rg.Group("/products/:id/stock")
	{
		stock.GET("", h.getStock)
		stock.GET("/history", h.getStockHistory)
		stock.POST("/adjust", chain(writes, h.adjustStock)...)
	}
}

// getStock godoc
// @Summary Get a product's stock level
// @Tags stock
// @Produce  json
// @Param   id path string true "Product ID"
// @Success 200 {object} dto.StockResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Failed to retrieve stock"
// @Security BearerAuth
// @Router /products/{id}/stock [get]
func (h *stockHandler) getStock(c *gin.Context) {
	product, err := h.stockService.GetStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockResponse(product))
}

// getStockHistory godoc
// @Summary Get a product's stock history
// @Description Lists every stock movement of the product, oldest first
// @Tags stock
// @Produce  json
// @Param   id path string true "Product ID"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.StockHistoryResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Failed to retrieve stock history"
// @Security BearerAuth
// @Router /products/{id}/stock/history [get]
func (h *stockHandler) getStockHistory(c *gin.Context) {
	var params dto.ListStockHistoryParams
	if !bindQuery(c, &params) {
		return
	}
	productID := c.Param("id")
	movements, err := h.stockService.ListStockHistory(c.Request.Context(), productID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to retrieve stock history")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockHistoryResponse(productID, movements))
}

// adjustStock godoc
// @Summary Adjust a product's stock
// @Description Records a manual correction or an off-ledger sale. Stock never goes below zero.
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   id path string true "Product ID"
// @Param   adjustment body dto.AdjustStockRequest true "Adjustment"
// @Success 200 {object} dto.StockResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Failed to adjust stock"
// @Security BearerAuth
// @Router /products/{id}/stock/adjust [post]
func (h *stockHandler) adjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}

	productID := c.Param("id")
	if _, err := h.stockService.Adjust(c.Request.Context(), productID, req.Delta, req.Reason, req.Notes, userID); err != nil {
		respondError(c, err, "Failed to adjust stock")
		return
	}
	product, err := h.stockService.GetStock(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err, "Failed to retrieve stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockResponse(product))
}
