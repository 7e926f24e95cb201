package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

// PaymentRepository persists the immutable payment journal.
type PaymentRepository interface {
	// SavePayment appends a payment.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// ListPaymentsByCreditAccount retrieves an account's payments, oldest first.
	ListPaymentsByCreditAccount(ctx context.Context, accountID string) ([]domain.Payment, error)
}

// SideEffectRepository persists the payment follow-up outbox.
type SideEffectRepository interface {
	// SaveSideEffects appends pending follow-ups.
	SaveSideEffects(ctx context.Context, effects []domain.SideEffect) error

	// FindSideEffectForUpdate retrieves a follow-up and locks it for the running transaction.
	FindSideEffectForUpdate(ctx context.Context, sideEffectID string) (*domain.SideEffect, error)

	// UpdateSideEffect persists the outcome of an attempt.
	UpdateSideEffect(ctx context.Context, effect domain.SideEffect) error

	// ListPendingSideEffects retrieves pending follow-ups created before the cutoff, oldest first.
	ListPendingSideEffects(ctx context.Context, createdBefore time.Time, maxAttempts int, limit int) ([]domain.SideEffect, error)
}
