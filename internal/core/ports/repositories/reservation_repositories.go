package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

// ReservationFilter narrows a reservation listing. Nil fields are ignored.
type ReservationFilter struct {
	Status          *domain.ReservationStatus
	ProductID       *string
	CustomerID      *string
	CreditAccountID *string
	Limit           int
	Offset          int
}

// ReservationReader defines read operations for reservations
type ReservationReader interface {
	// FindReservationByID retrieves a reservation by its ID.
	FindReservationByID(ctx context.Context, reservationID string) (*domain.Reservation, error)

	// FindReservationByIDForUpdate retrieves a reservation and locks its row until the surrounding transaction ends.
	FindReservationByIDForUpdate(ctx context.Context, reservationID string) (*domain.Reservation, error)

	// ListReservations retrieves reservations matching the filter, newest first.
	ListReservations(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
}

// ReservationWriter defines write operations for reservations
type ReservationWriter interface {
	// SaveReservation persists a new reservation.
	SaveReservation(ctx context.Context, reservation domain.Reservation) error

	// UpdateReservation persists status, link and completion changes of a reservation.
	UpdateReservation(ctx context.Context, reservation domain.Reservation) error

	// MarkReservationsSold moves every active reservation linked to the account to sold
	// and returns how many rows changed.
	MarkReservationsSold(ctx context.Context, creditAccountID string, userID string, now time.Time) (int64, error)
}

// ReservationRepositoryFacade combines all reservation repository interfaces
type ReservationRepositoryFacade interface {
	ReservationReader
	ReservationWriter
}
