package services

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/dto"
)

// ReservationReaderSvc defines read operations for reservations
type ReservationReaderSvc interface {
	// GetReservation retrieves a reservation by its ID.
	GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)

	// ListReservations retrieves reservations matching the filter.
	ListReservations(ctx context.Context, params dto.ListReservationsParams) ([]domain.Reservation, error)
}

// ReservationWriterSvc defines the reservation lifecycle transitions
type ReservationWriterSvc interface {
	// CreateReservation takes stock off the shelf and records an active reservation.
	CreateReservation(ctx context.Context, req dto.CreateReservationRequest, userID string) (*domain.Reservation, error)

	// ConvertToCreditAccount adds the reservation's value to the customer's credit
	// account and links the two. The reservation stays active until the account is paid off.
	ConvertToCreditAccount(ctx context.Context, reservationID string, req dto.ConvertReservationRequest, userID string) (*domain.CreditAccount, error)

	// CancelReservation releases the reserved stock and closes the reservation as cancelled.
	CancelReservation(ctx context.Context, reservationID string, userID string) (*domain.Reservation, error)

	// ReturnReservation releases the reserved stock and closes the reservation as returned.
	ReturnReservation(ctx context.Context, reservationID string, userID string) (*domain.Reservation, error)
}

// ReservationSvcFacade combines all reservation service interfaces
type ReservationSvcFacade interface {
	ReservationReaderSvc
	ReservationWriterSvc
}
