package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/platform/metrics"
	"github.com/google/uuid"
)

const defaultStockHistoryLimit = 50

// stockLedgerService owns the stock level of every product. All writes go
// through mutate, which appends the matching stock movement.
type stockLedgerService struct {
	BaseService
	txManager portsrepo.TransactionManager
	stockRepo portsrepo.StockRepositoryFacade
}

// NewStockLedgerService creates a new stock ledger service with the provided options
func NewStockLedgerService(txManager portsrepo.TransactionManager, stockRepo portsrepo.StockRepositoryFacade, options ...ServiceOption) portssvc.StockLedgerSvcFacade {
	return &stockLedgerService{
		BaseService: newBaseService(options),
		txManager:   txManager,
		stockRepo:   stockRepo,
	}
}

var _ portssvc.StockLedgerSvcFacade = (*stockLedgerService)(nil)

func (s *stockLedgerService) GetStock(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.stockRepo.FindProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find product", slog.String("product_id", productID))
		}
		return nil, err
	}
	return product, nil
}

func (s *stockLedgerService) ListStockHistory(ctx context.Context, productID string, limit int, offset int) ([]domain.StockMovement, error) {
	if _, err := s.GetStock(ctx, productID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultStockHistoryLimit
	}
	movements, err := s.stockRepo.ListStockMovementsByProduct(ctx, productID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list stock movements",
			slog.String("product_id", productID),
			slog.Int("limit", limit),
			slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list stock history for product %s: %w", productID, err)
	}
	if movements == nil {
		return []domain.StockMovement{}, nil
	}
	return movements, nil
}

func (s *stockLedgerService) Reserve(ctx context.Context, productID string, qty int, reference string, userID string) (int, error) {
	if qty < 1 {
		return 0, fmt.Errorf("%w: got %d", apperrors.ErrInvalidQuantity, qty)
	}
	return s.mutate(ctx, productID, func(ctx context.Context, p *domain.Product) (domain.StockMovement, error) {
		if qty > p.StockQuantity {
			return domain.StockMovement{}, fmt.Errorf("%w: product %s has %d, requested %d",
				apperrors.ErrInsufficientStock, p.ProductID, p.StockQuantity, qty)
		}
		return domain.StockMovement{
			Delta:     -qty,
			Reason:    domain.StockReservation,
			Reference: reference,
			CreatedBy: userID,
		}, nil
	})
}

func (s *stockLedgerService) Release(ctx context.Context, productID string, qty int, reference string, userID string) (int, error) {
	if qty < 1 {
		return 0, fmt.Errorf("%w: got %d", apperrors.ErrInvalidQuantity, qty)
	}
	if reference == "" {
		return 0, fmt.Errorf("%w: a release needs the reference it was reserved under", apperrors.ErrValidation)
	}
	return s.mutate(ctx, productID, func(ctx context.Context, p *domain.Product) (domain.StockMovement, error) {
		net, err := s.stockRepo.SumStockDeltaByReference(ctx, p.ProductID, reference)
		if err != nil {
			return domain.StockMovement{}, fmt.Errorf("failed to sum stock movements for %s: %w", reference, err)
		}
		if outstanding := -net; qty > outstanding {
			return domain.StockMovement{}, fmt.Errorf("%w: %s has %d outstanding, release of %d refused",
				apperrors.ErrOverRelease, reference, outstanding, qty)
		}
		return domain.StockMovement{
			Delta:     qty,
			Reason:    domain.StockReservationRelease,
			Reference: reference,
			CreatedBy: userID,
		}, nil
	})
}

func (s *stockLedgerService) Adjust(ctx context.Context, productID string, delta int, reason domain.StockMovementReason, notes string, userID string) (int, error) {
	if delta == 0 {
		return 0, fmt.Errorf("%w: adjustment delta must not be zero", apperrors.ErrInvalidQuantity)
	}
	if reason == "" {
		reason = domain.StockAdjustment
	}
	if !reason.IsManual() {
		return 0, fmt.Errorf("%w: %q movements are recorded by the ledger itself", apperrors.ErrValidation, reason)
	}
	return s.mutate(ctx, productID, func(ctx context.Context, p *domain.Product) (domain.StockMovement, error) {
		if p.StockQuantity+delta < 0 {
			return domain.StockMovement{}, fmt.Errorf("%w: product %s has %d, adjustment of %d refused",
				apperrors.ErrInsufficientStock, p.ProductID, p.StockQuantity, delta)
		}
		return domain.StockMovement{
			Delta:     delta,
			Reason:    reason,
			Notes:     notes,
			CreatedBy: userID,
		}, nil
	})
}

// mutate serializes on the product, lets plan decide the movement from the
// locked row, then writes the new level and the movement in one transaction.
func (s *stockLedgerService) mutate(ctx context.Context, productID string, plan func(ctx context.Context, p *domain.Product) (domain.StockMovement, error)) (int, error) {
	ctx, release, err := s.lock(ctx, portssvc.LockProductPrefix+productID)
	if err != nil {
		return 0, err
	}
	defer release()

	var movement domain.StockMovement
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.stockRepo.FindProductByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		movement, err = plan(ctx, product)
		if err != nil {
			return err
		}

		now := s.Now()
		movement.MovementID = uuid.NewString()
		movement.ProductID = productID
		movement.StockBefore = product.StockQuantity
		movement.StockAfter = product.StockQuantity + movement.Delta
		movement.CreatedAt = now
		if movement.Reference == "" {
			movement.Reference = string(movement.Reason) + ":" + movement.MovementID
		}

		if err := s.stockRepo.UpdateProductStock(ctx, productID, movement.StockAfter, now); err != nil {
			return fmt.Errorf("failed to update stock of product %s: %w", productID, err)
		}
		if err := s.stockRepo.SaveStockMovement(ctx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement for product %s: %w", productID, err)
		}
		return nil
	})
	if err != nil {
		s.logRefusal(ctx, err, "Stock mutation failed", slog.String("product_id", productID))
		return 0, err
	}

	metrics.StockMovementsTotal.WithLabelValues(string(movement.Reason)).Inc()
	s.LogInfo(ctx, "Stock updated",
		slog.String("product_id", productID),
		slog.String("reason", string(movement.Reason)),
		slog.String("reference", movement.Reference),
		slog.Int("delta", movement.Delta),
		slog.Int("stock_after", movement.StockAfter))
	return movement.StockAfter, nil
}

// isCallerError reports whether err is a business-rule rejection rather than a failure.
func isCallerError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrValidation,
		apperrors.ErrInsufficientStock,
		apperrors.ErrInvalidQuantity,
		apperrors.ErrOverRelease,
		apperrors.ErrReservationNotActive,
		apperrors.ErrReservationLinked,
		apperrors.ErrEmptyLineItems,
		apperrors.ErrInvalidAmount,
		apperrors.ErrAmountExceedsBalance,
		apperrors.ErrAccountNotFound,
		apperrors.ErrAccountNotActive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
