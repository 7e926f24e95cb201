package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/SscSPs/crediario_backend/internal/platform/metrics"
	"github.com/SscSPs/crediario_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultSideEffectMaxAttempts = 10
	defaultSideEffectMinAge      = 30 * time.Second
	sideEffectRetryBatch         = 100
)

// reconciliationService is the only code path that applies money to a credit account.
type reconciliationService struct {
	BaseService
	txManager       portsrepo.TransactionManager
	creditRepo      portsrepo.CreditAccountRepositoryFacade
	paymentRepo     portsrepo.PaymentRepository
	sideEffectRepo  portsrepo.SideEffectRepository
	reservationRepo portsrepo.ReservationWriter
	orderRepo       portsrepo.OrderRepository
	customerRepo    portsrepo.CustomerRepository
	maxAttempts     int
	minAge          time.Duration // Retries skip follow-ups younger than this; their payment may still be running them
}

// ReconciliationOption configures the retry policy of the reconciliation service
type ReconciliationOption func(*reconciliationService)

// WithSideEffectMaxAttempts caps how often a failing follow-up is retried
func WithSideEffectMaxAttempts(n int) ReconciliationOption {
	return func(s *reconciliationService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithSideEffectMinAge sets how old a pending follow-up must be before a retry picks it up
func WithSideEffectMinAge(d time.Duration) ReconciliationOption {
	return func(s *reconciliationService) {
		if d >= 0 {
			s.minAge = d
		}
	}
}

// WithReconciliationBase applies the shared service options
func WithReconciliationBase(options ...ServiceOption) ReconciliationOption {
	return func(s *reconciliationService) {
		for _, option := range options {
			option(&s.BaseService)
		}
	}
}

// NewReconciliationService creates a new payment reconciliation service with the provided options
func NewReconciliationService(repos portsrepo.RepositoryProvider, options ...ReconciliationOption) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		txManager:       repos.TxManager,
		creditRepo:      repos.CreditRepo,
		paymentRepo:     repos.PaymentRepo,
		sideEffectRepo:  repos.SideEffectRepo,
		reservationRepo: repos.ReservationRepo,
		orderRepo:       repos.OrderRepo,
		customerRepo:    repos.CustomerRepo,
		maxAttempts:     defaultSideEffectMaxAttempts,
		minAge:          defaultSideEffectMinAge,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) PreviewPayment(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.PaymentPreview, error) {
	account, err := s.creditRepo.FindCreditAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			s.LogError(ctx, err, "Failed to find credit account", slog.String("credit_account_id", accountID))
		}
		return nil, err
	}

	willBePaidOff, err := account.CheckPayment(amount)
	if err != nil {
		return nil, err
	}
	current := account.CurrentRemaining()
	return &domain.PaymentPreview{
		CreditAccountID:  account.CreditAccountID,
		Amount:           amount,
		CurrentRemaining: current,
		RemainingAfter:   current.Sub(amount),
		WillBePaidOff:    willBePaidOff,
	}, nil
}

func (s *reconciliationService) ListPayments(ctx context.Context, accountID string) ([]domain.Payment, error) {
	if _, err := s.creditRepo.FindCreditAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListPaymentsByCreditAccount(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("credit_account_id", accountID))
		return nil, fmt.Errorf("failed to list payments for %s: %w", accountID, err)
	}
	if payments == nil {
		return []domain.Payment{}, nil
	}
	return payments, nil
}

// ApplyPayment validates, records and applies a payment in one transaction,
// then runs the follow-ups it queued. A follow-up that fails becomes a warning
// and stays pending for RetryPendingSideEffects.
func (s *reconciliationService) ApplyPayment(ctx context.Context, accountID string, req dto.ApplyPaymentRequest, userID string) (*domain.PaymentOutcome, error) {
	if !req.Amount.IsPositive() {
		metrics.PaymentsRejectedTotal.WithLabelValues("invalid_amount").Inc()
		return nil, apperrors.ErrInvalidAmount
	}
	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: unsupported payment method %q", apperrors.ErrValidation, req.Method)
	}

	outcome, effects, err := s.commitPayment(ctx, accountID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount):
			metrics.PaymentsRejectedTotal.WithLabelValues("invalid_amount").Inc()
		case errors.Is(err, apperrors.ErrAmountExceedsBalance):
			metrics.PaymentsRejectedTotal.WithLabelValues("exceeds_balance").Inc()
		}
		s.logRefusal(ctx, err, "Payment not applied",
			slog.String("credit_account_id", accountID),
			slog.String("amount", utils.FormatMoney(req.Amount)))
		return nil, err
	}

	metrics.PaymentsAppliedTotal.WithLabelValues(string(req.Method)).Inc()
	metrics.PaymentAmountTotal.Add(req.Amount.InexactFloat64())
	s.LogInfo(ctx, "Payment applied",
		slog.String("credit_account_id", accountID),
		slog.String("payment_id", outcome.Payment.PaymentID),
		slog.String("amount", utils.FormatMoney(req.Amount)),
		slog.String("remaining", utils.FormatMoney(outcome.Account.RemainingAmount)),
		slog.Bool("paid_off", outcome.PaidOff))

	outcome.Warnings, _ = s.runSideEffects(ctx, effects, userID)

	s.publish(ctx, domain.EventPaymentApplied, accountID, outcome.Payment)
	if outcome.PaidOff {
		metrics.AccountsPaidOffTotal.Inc()
		s.publish(ctx, domain.EventAccountPaidOff, accountID, outcome.Account.Balance())
	}
	return outcome, nil
}

// commitPayment holds the account lock only for the transaction; follow-ups run after it.
func (s *reconciliationService) commitPayment(ctx context.Context, accountID string, req dto.ApplyPaymentRequest, userID string) (*domain.PaymentOutcome, []domain.SideEffect, error) {
	ctx, release, err := s.lock(ctx, portssvc.LockAccountPrefix+accountID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	var (
		outcome domain.PaymentOutcome
		effects []domain.SideEffect
	)
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.creditRepo.FindCreditAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		willBePaidOff, err := account.CheckPayment(req.Amount)
		if err != nil {
			return err
		}

		now := s.Now()
		paidOff, err := account.ApplyPayment(req.Amount, userID, now)
		if err != nil {
			return err
		}

		payment := domain.Payment{
			PaymentID:       uuid.NewString(),
			CreditAccountID: account.CreditAccountID,
			Amount:          req.Amount,
			Method:          req.Method,
			Notes:           req.Notes,
			PaidAfter:       account.PaidAmount,
			RemainingAfter:  account.RemainingAmount,
			CreatedAt:       now,
			CreatedBy:       userID,
		}
		if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := s.creditRepo.UpdateCreditAccountTotals(ctx, *account); err != nil {
			return fmt.Errorf("failed to update credit account totals: %w", err)
		}

		effects = plannedSideEffects(account, payment, paidOff, now)
		if err := s.sideEffectRepo.SaveSideEffects(ctx, effects); err != nil {
			return fmt.Errorf("failed to queue payment follow-ups: %w", err)
		}

		outcome = domain.PaymentOutcome{
			Account:       *account,
			Payment:       payment,
			WillBePaidOff: willBePaidOff,
			PaidOff:       paidOff,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &outcome, effects, nil
}

// plannedSideEffects lists the follow-ups a committed payment owes. Every payment
// adds to the customer's spend; payoff also settles reservations and the order.
func plannedSideEffects(account *domain.CreditAccount, payment domain.Payment, paidOff bool, now time.Time) []domain.SideEffect {
	effect := func(kind domain.SideEffectKind, target string, amount decimal.Decimal) domain.SideEffect {
		return domain.SideEffect{
			SideEffectID:    uuid.NewString(),
			CreditAccountID: account.CreditAccountID,
			PaymentID:       payment.PaymentID,
			Kind:            kind,
			Status:          domain.SideEffectPending,
			Amount:          amount,
			TargetID:        target,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	effects := []domain.SideEffect{effect(domain.EffectCustomerSpent, account.CustomerID, payment.Amount)}
	if !paidOff {
		return effects
	}
	effects = append(effects, effect(domain.EffectReservationsSold, account.CreditAccountID, decimal.Zero))
	if account.OrderID != nil && *account.OrderID != "" {
		effects = append(effects, effect(domain.EffectOrderCompleted, *account.OrderID, decimal.Zero))
	}
	return effects
}

func (s *reconciliationService) RetryPendingSideEffects(ctx context.Context) (*domain.RetryReport, error) {
	pending, err := s.sideEffectRepo.ListPendingSideEffects(ctx, s.Now().Add(-s.minAge), s.maxAttempts, sideEffectRetryBatch)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending payment follow-ups")
		return nil, fmt.Errorf("failed to list pending follow-ups: %w", err)
	}

	warnings, settled := s.runSideEffects(ctx, pending, systemUserID)
	report := &domain.RetryReport{Attempted: len(pending) - settled}
	report.Failed = len(warnings)
	report.Succeeded = report.Attempted - report.Failed

	if report.Attempted > 0 || settled > 0 {
		s.LogInfo(ctx, "Retried payment follow-ups",
			slog.Int("attempted", report.Attempted),
			slog.Int("succeeded", report.Succeeded),
			slog.Int("failed", report.Failed),
			slog.Int("already_settled", settled))
	}
	return report, nil
}

// errSideEffectSettled marks a follow-up that another pass finished first.
var errSideEffectSettled = errors.New("follow-up already settled")

// runSideEffects executes each follow-up independently. It returns one warning
// per failure and the number skipped because another pass had settled them.
func (s *reconciliationService) runSideEffects(ctx context.Context, effects []domain.SideEffect, actor string) ([]string, int) {
	var warnings []string
	settled := 0
	for i := range effects {
		err := s.runSideEffect(ctx, &effects[i], actor)
		switch {
		case err == nil:
		case errors.Is(err, errSideEffectSettled):
			settled++
		default:
			e := effects[i]
			warnings = append(warnings, fmt.Sprintf("%s for %s failed and will be retried: %v", e.Kind, e.TargetID, err))
		}
	}
	return warnings, settled
}

// claimSideEffect locks the follow-up row and returns its current state, or
// errSideEffectSettled when it is no longer pending.
func (s *reconciliationService) claimSideEffect(ctx context.Context, sideEffectID string) (*domain.SideEffect, error) {
	current, err := s.sideEffectRepo.FindSideEffectForUpdate(ctx, sideEffectID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim follow-up: %w", err)
	}
	if current.Status != domain.SideEffectPending {
		return nil, errSideEffectSettled
	}
	return current, nil
}

// runSideEffect claims a follow-up, applies it and marks it done in the same
// transaction. Two passes racing on one row serialize on the claim and the
// loser sees it settled. A failure is recorded separately.
func (s *reconciliationService) runSideEffect(ctx context.Context, effect *domain.SideEffect, actor string) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.claimSideEffect(ctx, effect.SideEffectID)
		if err != nil {
			return err
		}
		if err := s.execute(ctx, *current, actor); err != nil {
			return err
		}
		current.MarkAttempt(nil, s.Now())
		if err := s.sideEffectRepo.UpdateSideEffect(ctx, *current); err != nil {
			return fmt.Errorf("failed to mark follow-up done: %w", err)
		}
		*effect = *current
		return nil
	})
	switch {
	case err == nil:
		metrics.SideEffectsTotal.WithLabelValues(string(effect.Kind), "ok").Inc()
		return nil
	case errors.Is(err, errSideEffectSettled):
		s.LogDebug(ctx, "Payment follow-up already settled", slog.String("side_effect_id", effect.SideEffectID))
		return err
	}

	metrics.SideEffectsTotal.WithLabelValues(string(effect.Kind), "error").Inc()
	s.LogWarn(ctx, err, "Payment follow-up failed",
		slog.String("side_effect_id", effect.SideEffectID),
		slog.String("kind", string(effect.Kind)),
		slog.String("target_id", effect.TargetID),
		slog.Int("attempt", effect.Attempts+1))

	s.recordFailure(ctx, effect, err)
	return err
}

// recordFailure counts a failed attempt unless another pass settled the
// follow-up in the meantime.
func (s *reconciliationService) recordFailure(ctx context.Context, effect *domain.SideEffect, cause error) {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.claimSideEffect(ctx, effect.SideEffectID)
		if err != nil {
			return err
		}
		current.MarkAttempt(cause, s.Now())
		if err := s.sideEffectRepo.UpdateSideEffect(ctx, *current); err != nil {
			return err
		}
		*effect = *current
		return nil
	})
	if err != nil && !errors.Is(err, errSideEffectSettled) {
		s.LogError(ctx, err, "Failed to record follow-up attempt", slog.String("side_effect_id", effect.SideEffectID))
	}
}

func (s *reconciliationService) execute(ctx context.Context, effect domain.SideEffect, actor string) error {
	switch effect.Kind {
	case domain.EffectCustomerSpent:
		return s.customerRepo.IncrementTotalSpent(ctx, effect.TargetID, effect.Amount)
	case domain.EffectOrderCompleted:
		return s.orderRepo.UpdateOrderStatus(ctx, effect.TargetID, domain.OrderCompleted, domain.OrderPaid)
	case domain.EffectReservationsSold:
		n, err := s.reservationRepo.MarkReservationsSold(ctx, effect.TargetID, actor, s.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			metrics.ReservationTransitionsTotal.WithLabelValues(string(domain.ReservationSold)).Add(float64(n))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown follow-up kind %q", apperrors.ErrInternal, effect.Kind)
	}
}
