package services

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

// StockLedgerReaderSvc defines read operations for stock levels and history
type StockLedgerReaderSvc interface {
	// GetStock retrieves a product with its current stock level.
	GetStock(ctx context.Context, productID string) (*domain.Product, error)

	// ListStockHistory retrieves the stock movements of a product, oldest first.
	ListStockHistory(ctx context.Context, productID string, limit int, offset int) ([]domain.StockMovement, error)
}

// StockLedgerWriterSvc defines the stock mutations. Each one appends a stock movement.
type StockLedgerWriterSvc interface {
	// Reserve takes qty units off the shelf and returns the new stock level.
	Reserve(ctx context.Context, productID string, qty int, reference string, userID string) (int, error)

	// Release puts qty units reserved under reference back on the shelf and returns the new stock level.
	Release(ctx context.Context, productID string, qty int, reference string, userID string) (int, error)

	// Adjust applies a signed manual correction and returns the new stock level.
	Adjust(ctx context.Context, productID string, delta int, reason domain.StockMovementReason, notes string, userID string) (int, error)
}

// StockLedgerSvcFacade combines all stock ledger service interfaces
type StockLedgerSvcFacade interface {
	StockLedgerReaderSvc
	StockLedgerWriterSvc
}
