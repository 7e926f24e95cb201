package services

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// PaymentReaderSvc defines read operations for payments
type PaymentReaderSvc interface {
	// PreviewPayment reports what applying amount would do, without applying it.
	PreviewPayment(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.PaymentPreview, error)

	// ListPayments retrieves the payments of an account, oldest first.
	ListPayments(ctx context.Context, accountID string) ([]domain.Payment, error)
}

// PaymentWriterSvc is the single entry point that changes what a customer owes.
type PaymentWriterSvc interface {
	// ApplyPayment records a payment, updates the account and runs the follow-ups
	// it triggers. Follow-up failures are reported as warnings; the payment stays committed.
	ApplyPayment(ctx context.Context, accountID string, req dto.ApplyPaymentRequest, userID string) (*domain.PaymentOutcome, error)

	// RetryPendingSideEffects runs follow-ups that have not succeeded yet.
	RetryPendingSideEffects(ctx context.Context) (*domain.RetryReport, error)
}

// ReconciliationSvcFacade combines all payment reconciliation service interfaces
type ReconciliationSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
