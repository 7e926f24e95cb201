package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
)

func (s *Store) SaveCreditAccount(ctx context.Context, account domain.CreditAccount) error {
	return s.write(ctx, func() error {
		if _, exists := s.accounts[account.CreditAccountID]; exists {
			return fmt.Errorf("%w: credit account %s", apperrors.ErrDuplicate, account.CreditAccountID)
		}
		for _, a := range s.accounts {
			if a.AccountNumber == account.AccountNumber {
				return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.AccountNumber)
			}
		}
		items := account.Items
		account.Items = nil
		s.accounts[account.CreditAccountID] = account
		s.items[account.CreditAccountID] = slices.Clone(items)
		return nil
	})
}

func (s *Store) SaveCreditAccountItems(ctx context.Context, items []domain.CreditAccountItem) error {
	return s.write(ctx, func() error {
		for _, it := range items {
			if _, ok := s.accounts[it.CreditAccountID]; !ok {
				return apperrors.ErrAccountNotFound
			}
			s.items[it.CreditAccountID] = append(s.items[it.CreditAccountID], it)
		}
		return nil
	})
}

func (s *Store) UpdateCreditAccountTotals(ctx context.Context, account domain.CreditAccount) error {
	return s.write(ctx, func() error {
		stored, ok := s.accounts[account.CreditAccountID]
		if !ok {
			return apperrors.ErrAccountNotFound
		}
		stored.Status = account.Status
		stored.TotalAmount = account.TotalAmount
		stored.PaidAmount = account.PaidAmount
		stored.RemainingAmount = account.RemainingAmount
		stored.InstallmentValue = account.InstallmentValue
		stored.NextPaymentDate = account.NextPaymentDate
		stored.ClosedAt = account.ClosedAt
		stored.LastUpdatedAt = account.LastUpdatedAt
		stored.LastUpdatedBy = account.LastUpdatedBy
		s.accounts[account.CreditAccountID] = stored
		return nil
	})
}

func (s *Store) FindCreditAccountByID(_ context.Context, accountID string) (*domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &a, nil
}

func (s *Store) FindCreditAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.CreditAccount, error) {
	return s.FindCreditAccountByID(ctx, accountID)
}

func (s *Store) FindCreditAccountByNumber(_ context.Context, accountNumber string) (*domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.AccountNumber == accountNumber {
			return &a, nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

// newestMatching returns the most recently created account accepted by keep.
func (s *Store) newestMatching(keep func(domain.CreditAccount) bool) (*domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.CreditAccount
	for _, a := range s.accounts {
		if !keep(a) {
			continue
		}
		if found == nil || a.CreatedAt.After(found.CreatedAt) {
			match := a
			found = &match
		}
	}
	if found == nil {
		return nil, apperrors.ErrAccountNotFound
	}
	return found, nil
}

func (s *Store) FindOpenCreditAccountByCustomer(_ context.Context, customerID string) (*domain.CreditAccount, error) {
	return s.newestMatching(func(a domain.CreditAccount) bool {
		return a.CustomerID == customerID && a.Status == domain.CreditAccountActive && a.OrderID == nil
	})
}

func (s *Store) FindOpenCreditAccountByOrder(_ context.Context, customerID string, orderID string) (*domain.CreditAccount, error) {
	return s.newestMatching(func(a domain.CreditAccount) bool {
		return a.CustomerID == customerID && a.Status == domain.CreditAccountActive &&
			a.OrderID != nil && *a.OrderID == orderID
	})
}

func (s *Store) ListCreditAccounts(_ context.Context, filter portsrepo.CreditAccountFilter) ([]domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CreditAccount, 0)
	for _, a := range s.accounts {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && a.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.CreditAccount) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.CreditAccountID, a.CreditAccountID)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Store) FindItemsByCreditAccountID(_ context.Context, accountID string) ([]domain.CreditAccountItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.items[accountID]), nil
}
