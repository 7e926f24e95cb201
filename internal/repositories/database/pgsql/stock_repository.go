package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/SscSPs/crediario_backend/internal/models"
	"github.com/SscSPs/crediario_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStockRepository struct {
	BaseRepository
}

// newPgxStockRepository creates a repository for product stock and its history.
func newPgxStockRepository(pool *pgxpool.Pool) portsrepo.StockRepositoryFacade {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StockRepositoryFacade = (*PgxStockRepository)(nil)

const productSelectQuery = `
SELECT product_id, name, stock_quantity, unit_price, updated_at
FROM products
WHERE product_id = $1
`

func (r *PgxStockRepository) findProduct(ctx context.Context, query string, productID string) (*domain.Product, error) {
	rows, err := r.db(ctx).Query(ctx, query, productID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query product", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	product := mapping.ToDomainProduct(m)
	return &product, nil
}

// FindProductByID retrieves a product by its ID.
func (r *PgxStockRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	return r.findProduct(ctx, productSelectQuery, productID)
}

// FindProductByIDForUpdate retrieves a product and locks its row.
func (r *PgxStockRepository) FindProductByIDForUpdate(ctx context.Context, productID string) (*domain.Product, error) {
	return r.findProduct(ctx, productSelectQuery+"FOR UPDATE", productID)
}

// UpdateProductStock overwrites the stock level of a product.
func (r *PgxStockRepository) UpdateProductStock(ctx context.Context, productID string, stock int, now time.Time) error {
	query := `UPDATE products SET stock_quantity = $2, updated_at = $3 WHERE product_id = $1;`
	ct, err := r.db(ctx).Exec(ctx, query, productID, stock, now)
	if err != nil {
		return mapWriteError(err, "product stock "+productID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	return nil
}

// SaveStockMovement appends a movement to the stock history.
func (r *PgxStockRepository) SaveStockMovement(ctx context.Context, movement domain.StockMovement) error {
	m := mapping.ToModelStockMovement(movement)
	query := `
		INSERT INTO stock_movements (
			movement_id, product_id, delta, stock_before, stock_after,
			reason, reference, notes, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.MovementID, m.ProductID, m.Delta, m.StockBefore, m.StockAfter,
		m.Reason, m.Reference, m.Notes, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return mapWriteError(err, "stock movement "+m.MovementID)
	}
	return nil
}

// ListStockMovementsByProduct returns the stock history of a product, oldest first.
func (r *PgxStockRepository) ListStockMovementsByProduct(ctx context.Context, productID string, limit int, offset int) ([]domain.StockMovement, error) {
	query := `
		SELECT movement_id, product_id, delta, stock_before, stock_after,
			reason, reference, notes, created_at, created_by
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at ASC, movement_id ASC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db(ctx).Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query stock movements", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.StockMovement])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect stock movement rows", err)
	}
	return mapping.ToDomainStockMovementSlice(ms), nil
}

// SumStockDeltaByReference returns the net delta recorded for a product under reference.
func (r *PgxStockRepository) SumStockDeltaByReference(ctx context.Context, productID string, reference string) (int, error) {
	query := `SELECT COALESCE(SUM(delta), 0) FROM stock_movements WHERE product_id = $1 AND reference = $2;`
	var sum int64
	if err := r.db(ctx).QueryRow(ctx, query, productID, reference).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum stock movements for %s: %w", reference, err)
	}
	return int(sum), nil
}
