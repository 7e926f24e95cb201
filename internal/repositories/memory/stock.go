package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

func (s *Store) FindProductByID(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	return &p, nil
}

// FindProductByIDForUpdate is FindProductByID; transactions already run one at a time.
func (s *Store) FindProductByIDForUpdate(ctx context.Context, productID string) (*domain.Product, error) {
	return s.FindProductByID(ctx, productID)
}

func (s *Store) UpdateProductStock(ctx context.Context, productID string, stock int, now time.Time) error {
	return s.write(ctx, func() error {
		p, ok := s.products[productID]
		if !ok {
			return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
		}
		if stock < 0 {
			return fmt.Errorf("%w: product %s stock would be %d", apperrors.ErrInsufficientStock, productID, stock)
		}
		p.StockQuantity = stock
		p.UpdatedAt = now
		s.products[productID] = p
		return nil
	})
}

func (s *Store) SaveStockMovement(ctx context.Context, movement domain.StockMovement) error {
	return s.write(ctx, func() error {
		s.movements = append(s.movements, movement)
		return nil
	})
}

func (s *Store) ListStockMovementsByProduct(_ context.Context, productID string, limit int, offset int) ([]domain.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StockMovement, 0)
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return page(out, limit, offset), nil
}

func (s *Store) SumStockDeltaByReference(_ context.Context, productID string, reference string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := 0
	for _, m := range s.movements {
		if m.ProductID == productID && m.Reference == reference {
			sum += m.Delta
		}
	}
	return sum, nil
}
