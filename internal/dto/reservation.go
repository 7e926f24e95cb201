package dto

import (
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateReservationRequest defines the data needed to hold stock for a customer.
type CreateReservationRequest struct {
	ProductID           string    `json:"productID" binding:"required"`
	CustomerName        string    `json:"customerName" binding:"required_without=CustomerID"`
	CustomerID          *string   `json:"customerID"` // Optional link to a registered customer
	Quantity            int       `json:"quantity" binding:"required"`
	PromisedPaymentDate time.Time `json:"promisedPaymentDate" binding:"required"`
	Notes               string    `json:"notes"`
}

// ConvertReservationRequest defines the credit terms used when a reservation is converted.
type ConvertReservationRequest struct {
	CustomerID       string                  `json:"customerID" binding:"required"`
	FirstPaymentDate time.Time               `json:"firstPaymentDate" binding:"required"`
	Installments     int                     `json:"installments" binding:"required,min=1"`
	PaymentFrequency domain.PaymentFrequency `json:"paymentFrequency" binding:"required,oneof=weekly monthly"`
}

// ListReservationsParams defines query parameters for listing reservations.
type ListReservationsParams struct {
	Status          *domain.ReservationStatus `form:"status" binding:"omitempty,oneof=active sold cancelled returned"`
	ProductID       *string                   `form:"productID"`
	CustomerID      *string                   `form:"customerID"`
	CreditAccountID *string                   `form:"creditAccountID"`
	Limit           int                       `form:"limit,default=20" binding:"min=1,max=200"`
	Offset          int                       `form:"offset,default=0" binding:"min=0"`
}

// ReservationResponse defines the data returned for a reservation.
type ReservationResponse struct {
	ReservationID       string                   `json:"reservationID"`
	ProductID           string                   `json:"productID"`
	CustomerName        string                   `json:"customerName"`
	CustomerID          *string                  `json:"customerID,omitempty"`
	Quantity            int                      `json:"quantity"`
	UnitPriceSnapshot   decimal.Decimal          `json:"unitPriceSnapshot"`
	Value               decimal.Decimal          `json:"value"`
	PromisedPaymentDate time.Time                `json:"promisedPaymentDate"`
	Status              domain.ReservationStatus `json:"status"`
	CreditAccountID     *string                  `json:"creditAccountID,omitempty"`
	Notes               string                   `json:"notes"`
	CreatedAt           time.Time                `json:"createdAt"`
	CreatedBy           string                   `json:"createdBy"`
	CompletedAt         *time.Time               `json:"completedAt,omitempty"`
}

// ListReservationsResponse wraps the list of reservations.
type ListReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// ToReservationResponse converts a domain.Reservation to ReservationResponse DTO
func ToReservationResponse(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID:       r.ReservationID,
		ProductID:           r.ProductID,
		CustomerName:        r.CustomerName,
		CustomerID:          r.CustomerID,
		Quantity:            r.Quantity,
		UnitPriceSnapshot:   r.UnitPriceSnapshot,
		Value:               r.Value(),
		PromisedPaymentDate: r.PromisedPaymentDate,
		Status:              r.Status,
		CreditAccountID:     r.CreditAccountID,
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
		CreatedBy:           r.CreatedBy,
		CompletedAt:         r.CompletedAt,
	}
}

// ToListReservationsResponse converts a slice of domain.Reservation to the list response
func ToListReservationsResponse(reservations []domain.Reservation) ListReservationsResponse {
	res := make([]ReservationResponse, len(reservations))
	for i := range reservations {
		res[i] = ToReservationResponse(&reservations[i])
	}
	return ListReservationsResponse{Reservations: res}
}
