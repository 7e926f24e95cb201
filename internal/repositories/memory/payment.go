package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

func (s *Store) SavePayment(ctx context.Context, payment domain.Payment) error {
	return s.write(ctx, func() error {
		if _, ok := s.accounts[payment.CreditAccountID]; !ok {
			return apperrors.ErrAccountNotFound
		}
		s.payments[payment.CreditAccountID] = append(s.payments[payment.CreditAccountID], payment)
		return nil
	})
}

func (s *Store) ListPaymentsByCreditAccount(_ context.Context, accountID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.payments[accountID])
	if out == nil {
		out = []domain.Payment{}
	}
	return out, nil
}

func (s *Store) SaveSideEffects(ctx context.Context, effects []domain.SideEffect) error {
	return s.write(ctx, func() error {
		for _, e := range effects {
			if _, exists := s.sideEffects[e.SideEffectID]; exists {
				return fmt.Errorf("%w: side effect %s", apperrors.ErrDuplicate, e.SideEffectID)
			}
			s.sideEffects[e.SideEffectID] = e
		}
		return nil
	})
}

// FindSideEffectForUpdate reads the follow-up as the running transaction sees it.
// Transactions are serialized, so no extra row lock is needed.
func (s *Store) FindSideEffectForUpdate(_ context.Context, sideEffectID string) (*domain.SideEffect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sideEffects[sideEffectID]
	if !ok {
		return nil, fmt.Errorf("%w: side effect %s", apperrors.ErrNotFound, sideEffectID)
	}
	return &e, nil
}

func (s *Store) UpdateSideEffect(ctx context.Context, effect domain.SideEffect) error {
	return s.write(ctx, func() error {
		if _, ok := s.sideEffects[effect.SideEffectID]; !ok {
			return fmt.Errorf("%w: side effect %s", apperrors.ErrNotFound, effect.SideEffectID)
		}
		s.sideEffects[effect.SideEffectID] = effect
		return nil
	})
}

func (s *Store) ListPendingSideEffects(_ context.Context, createdBefore time.Time, maxAttempts int, limit int) ([]domain.SideEffect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SideEffect, 0)
	for _, e := range s.sideEffects {
		if e.Status != domain.SideEffectPending || !e.CreatedAt.Before(createdBefore) || e.Attempts >= maxAttempts {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.SideEffect) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SideEffectID, b.SideEffectID)
	})
	return page(out, limit, 0), nil
}
