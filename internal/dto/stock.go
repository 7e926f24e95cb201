package dto

import (
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest records a manual stock correction or an off-ledger sale.
type AdjustStockRequest struct {
	Delta  int                        `json:"delta" binding:"required"`
	Reason domain.StockMovementReason `json:"reason" binding:"omitempty,oneof=adjustment sale"`
	Notes  string                     `json:"notes"`
}

// ListStockHistoryParams defines query parameters for the stock history.
type ListStockHistoryParams struct {
	Limit  int `form:"limit,default=50" binding:"min=1,max=500"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// StockResponse defines the data returned for a product's stock level.
type StockResponse struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	StockQuantity int             `json:"stockQuantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// StockMovementResponse defines the data returned for a stock history entry.
type StockMovementResponse struct {
	MovementID  string                     `json:"movementID"`
	Delta       int                        `json:"delta"`
	StockBefore int                        `json:"stockBefore"`
	StockAfter  int                        `json:"stockAfter"`
	Reason      domain.StockMovementReason `json:"reason"`
	Reference   string                     `json:"reference"`
	Notes       string                     `json:"notes"`
	CreatedAt   time.Time                  `json:"createdAt"`
	CreatedBy   string                     `json:"createdBy"`
}

// StockHistoryResponse wraps the stock history of a product.
type StockHistoryResponse struct {
	ProductID string                  `json:"productID"`
	Movements []StockMovementResponse `json:"movements"`
}

// ToStockResponse converts a domain.Product to StockResponse DTO
func ToStockResponse(p *domain.Product) StockResponse {
	return StockResponse{
		ProductID:     p.ProductID,
		Name:          p.Name,
		StockQuantity: p.StockQuantity,
		UnitPrice:     p.UnitPrice,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToStockHistoryResponse converts stock movements to the history response
func ToStockHistoryResponse(productID string, movements []domain.StockMovement) StockHistoryResponse {
	res := make([]StockMovementResponse, len(movements))
	for i, m := range movements {
		res[i] = StockMovementResponse{
			MovementID:  m.MovementID,
			Delta:       m.Delta,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			Reference:   m.Reference,
			Notes:       m.Notes,
			CreatedAt:   m.CreatedAt,
			CreatedBy:   m.CreatedBy,
		}
	}
	return StockHistoryResponse{ProductID: productID, Movements: res}
}
