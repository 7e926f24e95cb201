package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/SscSPs/crediario_backend/internal/models"
	"github.com/SscSPs/crediario_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReservationRepository struct {
	BaseRepository
}

// newPgxReservationRepository creates a new repository for reservation data.
func newPgxReservationRepository(pool *pgxpool.Pool) portsrepo.ReservationRepositoryFacade {
	return &PgxReservationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReservationRepositoryFacade = (*PgxReservationRepository)(nil)

const fullReservationSelectQuery = `
SELECT
	reservation_id, product_id, customer_name, customer_id, quantity, unit_price_snapshot,
	promised_payment_date, status, credit_account_id, notes, completed_at,
	created_at, created_by, last_updated_at, last_updated_by
FROM reservations
`

// getReservations runs the select query with the given filter appended.
func (r *PgxReservationRepository) getReservations(ctx context.Context, filterQuery string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db(ctx).Query(ctx, fullReservationSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query reservations", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Reservation])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect reservation rows", err)
	}
	return mapping.ToDomainReservationSlice(ms), nil
}

func (r *PgxReservationRepository) getReservation(ctx context.Context, filterQuery string, reservationID string) (*domain.Reservation, error) {
	reservations, err := r.getReservations(ctx, filterQuery, reservationID)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, fmt.Errorf("%w: reservation %s", apperrors.ErrNotFound, reservationID)
	}
	return &reservations[0], nil
}

// SaveReservation inserts a new reservation.
func (r *PgxReservationRepository) SaveReservation(ctx context.Context, reservation domain.Reservation) error {
	m := mapping.ToModelReservation(reservation)
	query := `
		INSERT INTO reservations (
			reservation_id, product_id, customer_name, customer_id, quantity, unit_price_snapshot,
			promised_payment_date, status, credit_account_id, notes, completed_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.ReservationID, m.ProductID, m.CustomerName, m.CustomerID, m.Quantity, m.UnitPriceSnapshot,
		m.PromisedPaymentDate, m.Status, m.CreditAccountID, m.Notes, m.CompletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "reservation "+m.ReservationID)
	}
	return nil
}

// FindReservationByID retrieves a reservation by its ID.
func (r *PgxReservationRepository) FindReservationByID(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return r.getReservation(ctx, "WHERE reservation_id = $1", reservationID)
}

// FindReservationByIDForUpdate retrieves a reservation and locks its row.
func (r *PgxReservationRepository) FindReservationByIDForUpdate(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return r.getReservation(ctx, "WHERE reservation_id = $1 FOR UPDATE", reservationID)
}

// ListReservations retrieves reservations matching the filter, newest first.
func (r *PgxReservationRepository) ListReservations(ctx context.Context, filter portsrepo.ReservationFilter) ([]domain.Reservation, error) {
	var conds []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.Status != nil {
		add("status", string(*filter.Status))
	}
	if filter.ProductID != nil {
		add("product_id", *filter.ProductID)
	}
	if filter.CustomerID != nil {
		add("customer_id", *filter.CustomerID)
	}
	if filter.CreditAccountID != nil {
		add("credit_account_id", *filter.CreditAccountID)
	}

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString("WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&b, " ORDER BY created_at DESC, reservation_id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.getReservations(ctx, b.String(), args...)
}

// UpdateReservation persists the mutable fields of a reservation.
func (r *PgxReservationRepository) UpdateReservation(ctx context.Context, reservation domain.Reservation) error {
	m := mapping.ToModelReservation(reservation)
	query := `
		UPDATE reservations
		SET status = $2, credit_account_id = $3, customer_id = $4, completed_at = $5,
			notes = $6, last_updated_at = $7, last_updated_by = $8
		WHERE reservation_id = $1;
	`
	ct, err := r.db(ctx).Exec(ctx, query,
		m.ReservationID, m.Status, m.CreditAccountID, m.CustomerID, m.CompletedAt,
		m.Notes, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "reservation "+m.ReservationID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s", apperrors.ErrNotFound, m.ReservationID)
	}
	return nil
}

// MarkReservationsSold closes every active reservation linked to the account.
func (r *PgxReservationRepository) MarkReservationsSold(ctx context.Context, creditAccountID string, userID string, now time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = $2, completed_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE credit_account_id = $1 AND status = $5;
	`
	ct, err := r.db(ctx).Exec(ctx, query,
		creditAccountID, string(domain.ReservationSold), now, userID, string(domain.ReservationActive))
	if err != nil {
		return 0, fmt.Errorf("failed to mark reservations of account %s sold: %w", creditAccountID, err)
	}
	return ct.RowsAffected(), nil
}
