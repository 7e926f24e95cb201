package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/SscSPs/crediario_backend/internal/models"
	"github.com/SscSPs/crediario_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxCollaboratorRepository reads and updates the order and customer records
// owned by the storefront. Only the columns this service needs are touched.
type PgxCollaboratorRepository struct {
	BaseRepository
}

func newPgxCollaboratorRepository(pool *pgxpool.Pool) *PgxCollaboratorRepository {
	return &PgxCollaboratorRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.OrderRepository    = (*PgxCollaboratorRepository)(nil)
	_ portsrepo.CustomerRepository = (*PgxCollaboratorRepository)(nil)
)

// FindOrderByID retrieves an order by its ID.
func (r *PgxCollaboratorRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT order_id, order_number, customer_id, total, status, payment_status
		FROM orders
		WHERE order_id = $1;
	`
	rows, err := r.db(ctx).Query(ctx, query, orderID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query order", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Order])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to find order %s: %w", orderID, err)
	}
	order := mapping.ToDomainOrder(m)
	return &order, nil
}

// UpdateOrderStatus sets the status and payment status of an order.
func (r *PgxCollaboratorRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, paymentStatus domain.OrderPaymentStatus) error {
	query := `UPDATE orders SET status = $2, payment_status = $3 WHERE order_id = $1;`
	ct, err := r.db(ctx).Exec(ctx, query, orderID, string(status), string(paymentStatus))
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
	}
	return nil
}

// FindCustomerByID retrieves a customer by its ID.
func (r *PgxCollaboratorRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `SELECT customer_id, name, total_spent FROM customers WHERE customer_id = $1;`
	rows, err := r.db(ctx).Query(ctx, query, customerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query customer", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Customer])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to find customer %s: %w", customerID, err)
	}
	customer := mapping.ToDomainCustomer(m)
	return &customer, nil
}

// IncrementTotalSpent adds amount to the customer's lifetime spend.
func (r *PgxCollaboratorRepository) IncrementTotalSpent(ctx context.Context, customerID string, amount decimal.Decimal) error {
	query := `UPDATE customers SET total_spent = COALESCE(total_spent, 0) + $2 WHERE customer_id = $1;`
	ct, err := r.db(ctx).Exec(ctx, query, customerID, amount)
	if err != nil {
		return fmt.Errorf("failed to update total spent of customer %s: %w", customerID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
	}
	return nil
}
