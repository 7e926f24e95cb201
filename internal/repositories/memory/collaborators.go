package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) FindOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, paymentStatus domain.OrderPaymentStatus) error {
	return s.write(ctx, func() error {
		o, ok := s.orders[orderID]
		if !ok {
			return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
		}
		o.Status = status
		o.PaymentStatus = paymentStatus
		s.orders[orderID] = o
		return nil
	})
}

func (s *Store) FindCustomerByID(_ context.Context, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
	}
	return &c, nil
}

func (s *Store) IncrementTotalSpent(ctx context.Context, customerID string, amount decimal.Decimal) error {
	return s.write(ctx, func() error {
		c, ok := s.customers[customerID]
		if !ok {
			return fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
		}
		c.TotalSpent = c.TotalSpent.Add(amount)
		s.customers[customerID] = c
		return nil
	})
}
