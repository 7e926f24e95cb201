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

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a repository for payments and their follow-up outbox.
func newPgxPaymentRepository(pool *pgxpool.Pool) *PgxPaymentRepository {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.PaymentRepository    = (*PgxPaymentRepository)(nil)
	_ portsrepo.SideEffectRepository = (*PgxPaymentRepository)(nil)
)

// SavePayment appends a payment to the journal.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelCreditPayment(payment)
	query := `
		INSERT INTO credit_payments (
			payment_id, credit_account_id, amount, method, notes,
			paid_after, remaining_after, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.PaymentID, m.CreditAccountID, m.Amount, m.Method, m.Notes,
		m.PaidAfter, m.RemainingAfter, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return mapWriteError(err, "payment "+m.PaymentID)
	}
	return nil
}

// ListPaymentsByCreditAccount retrieves the payments of an account, oldest first.
func (r *PgxPaymentRepository) ListPaymentsByCreditAccount(ctx context.Context, accountID string) ([]domain.Payment, error) {
	query := `
		SELECT payment_id, credit_account_id, amount, method, notes,
			paid_after, remaining_after, created_at, created_by
		FROM credit_payments
		WHERE credit_account_id = $1
		ORDER BY created_at ASC, payment_id ASC;
	`
	rows, err := r.db(ctx).Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CreditPayment])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect payment rows", err)
	}
	return mapping.ToDomainPaymentSlice(ms), nil
}

// SaveSideEffects appends pending follow-ups in one batch.
func (r *PgxPaymentRepository) SaveSideEffects(ctx context.Context, effects []domain.SideEffect) error {
	if len(effects) == 0 {
		return nil
	}
	query := `
		INSERT INTO credit_side_effects (
			side_effect_id, credit_account_id, payment_id, kind, status, amount,
			target_id, attempts, last_error, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, e := range effects {
		m := mapping.ToModelSideEffect(e)
		batch.Queue(query,
			m.SideEffectID, m.CreditAccountID, m.PaymentID, m.Kind, m.Status, m.Amount,
			m.TargetID, m.Attempts, m.LastError, m.CreatedAt, m.UpdatedAt,
		)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = mapWriteError(err, "side effect "+effects[i].SideEffectID)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close side effect batch: %w", err)
	}
	return batchErr
}

// FindSideEffectForUpdate retrieves a follow-up and locks its row until the
// transaction ends, so concurrent retry passes see each other's outcome.
func (r *PgxPaymentRepository) FindSideEffectForUpdate(ctx context.Context, sideEffectID string) (*domain.SideEffect, error) {
	query := `
		SELECT side_effect_id, credit_account_id, payment_id, kind, status, amount,
			target_id, attempts, last_error, created_at, updated_at
		FROM credit_side_effects
		WHERE side_effect_id = $1
		FOR UPDATE;
	`
	rows, err := r.db(ctx).Query(ctx, query, sideEffectID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query side effect", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.SideEffect])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: side effect %s", apperrors.ErrNotFound, sideEffectID)
		}
		return nil, fmt.Errorf("failed to find side effect %s: %w", sideEffectID, err)
	}
	effect := mapping.ToDomainSideEffect(m)
	return &effect, nil
}

// UpdateSideEffect persists the outcome of an attempt.
func (r *PgxPaymentRepository) UpdateSideEffect(ctx context.Context, effect domain.SideEffect) error {
	query := `
		UPDATE credit_side_effects
		SET status = $2, attempts = $3, last_error = $4, updated_at = $5
		WHERE side_effect_id = $1;
	`
	ct, err := r.db(ctx).Exec(ctx, query,
		effect.SideEffectID, string(effect.Status), effect.Attempts, effect.LastError, effect.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "side effect "+effect.SideEffectID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: side effect %s", apperrors.ErrNotFound, effect.SideEffectID)
	}
	return nil
}

// ListPendingSideEffects retrieves pending follow-ups created before the cutoff, oldest first.
func (r *PgxPaymentRepository) ListPendingSideEffects(ctx context.Context, createdBefore time.Time, maxAttempts int, limit int) ([]domain.SideEffect, error) {
	query := `
		SELECT side_effect_id, credit_account_id, payment_id, kind, status, amount,
			target_id, attempts, last_error, created_at, updated_at
		FROM credit_side_effects
		WHERE status = $1 AND created_at < $2 AND attempts < $3
		ORDER BY created_at ASC, side_effect_id ASC
		LIMIT $4;
	`
	rows, err := r.db(ctx).Query(ctx, query, string(domain.SideEffectPending), createdBefore, maxAttempts, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending side effects", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.SideEffect])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect side effect rows", err)
	}
	return mapping.ToDomainSideEffectSlice(ms), nil
}
