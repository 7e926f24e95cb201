package mapping

import (
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/models"
)

// ToDomainProduct converts a model Product to a domain Product
func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID:     m.ProductID,
		Name:          m.Name,
		StockQuantity: m.StockQuantity,
		UnitPrice:     m.UnitPrice,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToModelStockMovement converts a domain StockMovement to a model StockMovement
func ToModelStockMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:  d.MovementID,
		ProductID:   d.ProductID,
		Delta:       d.Delta,
		StockBefore: d.StockBefore,
		StockAfter:  d.StockAfter,
		Reason:      string(d.Reason),
		Reference:   d.Reference,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainStockMovement converts a model StockMovement to a domain StockMovement
func ToDomainStockMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:  m.MovementID,
		ProductID:   m.ProductID,
		Delta:       m.Delta,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      domain.StockMovementReason(m.Reason),
		Reference:   m.Reference,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

// ToDomainStockMovementSlice converts a slice of model StockMovements to domain StockMovements
func ToDomainStockMovementSlice(ms []models.StockMovement) []domain.StockMovement {
	ds := make([]domain.StockMovement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStockMovement(m)
	}
	return ds
}

// ToDomainCustomer converts a model Customer to a domain Customer
func ToDomainCustomer(m models.Customer) domain.Customer {
	return domain.Customer{
		CustomerID: m.CustomerID,
		Name:       m.Name,
		TotalSpent: m.TotalSpent,
	}
}

// ToDomainOrder converts a model Order to a domain Order
func ToDomainOrder(m models.Order) domain.Order {
	return domain.Order{
		OrderID:       m.OrderID,
		OrderNumber:   m.OrderNumber,
		CustomerID:    m.CustomerID,
		Total:         m.Total,
		Status:        domain.OrderStatus(m.Status),
		PaymentStatus: domain.OrderPaymentStatus(m.PaymentStatus),
	}
}
