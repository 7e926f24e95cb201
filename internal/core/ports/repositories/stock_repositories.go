package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

// ProductReader defines read operations for product stock data
type ProductReader interface {
	// FindProductByID retrieves a product by its ID.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// FindProductByIDForUpdate retrieves a product and locks its row until the surrounding transaction ends.
	FindProductByIDForUpdate(ctx context.Context, productID string) (*domain.Product, error)
}

// ProductStockWriter defines the single write the stock ledger makes to a product.
type ProductStockWriter interface {
	// UpdateProductStock overwrites a product's stock level.
	UpdateProductStock(ctx context.Context, productID string, stock int, now time.Time) error
}

// StockMovementRepository persists the append-only stock history.
type StockMovementRepository interface {
	// SaveStockMovement appends a movement to the history.
	SaveStockMovement(ctx context.Context, movement domain.StockMovement) error

	// ListStockMovementsByProduct returns the history of a product, oldest first.
	ListStockMovementsByProduct(ctx context.Context, productID string, limit int, offset int) ([]domain.StockMovement, error)

	// SumStockDeltaByReference returns the net stock delta recorded for a product under a reference.
	SumStockDeltaByReference(ctx context.Context, productID string, reference string) (int, error)
}

// StockRepositoryFacade combines all stock-ledger repository interfaces
type StockRepositoryFacade interface {
	ProductReader
	ProductStockWriter
	StockMovementRepository
}
