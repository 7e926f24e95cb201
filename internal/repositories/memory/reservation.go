package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
)

func (s *Store) SaveReservation(ctx context.Context, reservation domain.Reservation) error {
	return s.write(ctx, func() error {
		if _, exists := s.reservations[reservation.ReservationID]; exists {
			return fmt.Errorf("%w: reservation %s", apperrors.ErrDuplicate, reservation.ReservationID)
		}
		s.reservations[reservation.ReservationID] = reservation
		return nil
	})
}

func (s *Store) FindReservationByID(_ context.Context, reservationID string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[reservationID]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", apperrors.ErrNotFound, reservationID)
	}
	return &r, nil
}

func (s *Store) FindReservationByIDForUpdate(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return s.FindReservationByID(ctx, reservationID)
}

func (s *Store) ListReservations(_ context.Context, filter portsrepo.ReservationFilter) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Reservation, 0)
	for _, r := range s.reservations {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.ProductID != nil && r.ProductID != *filter.ProductID {
			continue
		}
		if filter.CustomerID != nil && (r.CustomerID == nil || *r.CustomerID != *filter.CustomerID) {
			continue
		}
		if filter.CreditAccountID != nil && (r.CreditAccountID == nil || *r.CreditAccountID != *filter.CreditAccountID) {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.Reservation) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ReservationID, a.ReservationID)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Store) UpdateReservation(ctx context.Context, reservation domain.Reservation) error {
	return s.write(ctx, func() error {
		if _, ok := s.reservations[reservation.ReservationID]; !ok {
			return fmt.Errorf("%w: reservation %s", apperrors.ErrNotFound, reservation.ReservationID)
		}
		s.reservations[reservation.ReservationID] = reservation
		return nil
	})
}

func (s *Store) MarkReservationsSold(ctx context.Context, creditAccountID string, userID string, now time.Time) (int64, error) {
	var n int64
	err := s.write(ctx, func() error {
		for id, r := range s.reservations {
			if r.Status != domain.ReservationActive || r.CreditAccountID == nil || *r.CreditAccountID != creditAccountID {
				continue
			}
			if err := r.Complete(domain.ReservationSold, userID, now); err != nil {
				return err
			}
			s.reservations[id] = r
			n++
		}
		return nil
	})
	return n, err
}
