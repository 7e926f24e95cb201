package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationSold      ReservationStatus = "sold"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationReturned  ReservationStatus = "returned"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationSold || s == ReservationCancelled || s == ReservationReturned
}

// Reservation is a stock hold for a customer. Stock is taken from the shelf when
// the reservation is created and returned to it at most once, on cancel or return.
type Reservation struct {
	ReservationID       string            `json:"reservationID"`
	ProductID           string            `json:"productID"`
	CustomerName        string            `json:"customerName"`
	CustomerID          *string           `json:"customerID,omitempty"`
	Quantity            int               `json:"quantity"`
	UnitPriceSnapshot   decimal.Decimal   `json:"unitPriceSnapshot"`
	PromisedPaymentDate time.Time         `json:"promisedPaymentDate"`
	Status              ReservationStatus `json:"status"`
	CreditAccountID     *string           `json:"creditAccountID,omitempty"`
	Notes               string            `json:"notes"`
	CompletedAt         *time.Time        `json:"completedAt,omitempty"`
	AuditFields
}

// Value is the reservation's worth at the price captured when it was made.
func (r *Reservation) Value() decimal.Decimal {
	return Money(r.UnitPriceSnapshot.Mul(decimal.NewFromInt(int64(r.Quantity))))
}

// IsLinked reports whether the reservation was converted into credit.
func (r *Reservation) IsLinked() bool {
	return r.CreditAccountID != nil && *r.CreditAccountID != ""
}

// LinkCreditAccount records the credit account the reservation was converted into.
// The reservation stays active until that account is paid off.
func (r *Reservation) LinkCreditAccount(accountID string, userID string, now time.Time) error {
	if r.Status != ReservationActive {
		return fmt.Errorf("%w: reservation %s is %s", apperrors.ErrReservationNotActive, r.ReservationID, r.Status)
	}
	if r.IsLinked() {
		return fmt.Errorf("%w: reservation %s -> account %s", apperrors.ErrReservationLinked, r.ReservationID, *r.CreditAccountID)
	}
	r.CreditAccountID = &accountID
	r.LastUpdatedAt = now
	r.LastUpdatedBy = userID
	return nil
}

// Complete moves an active reservation into a terminal status.
func (r *Reservation) Complete(status ReservationStatus, userID string, now time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %s is not a terminal reservation status", apperrors.ErrValidation, status)
	}
	if r.Status != ReservationActive {
		return fmt.Errorf("%w: reservation %s is %s", apperrors.ErrReservationNotActive, r.ReservationID, r.Status)
	}
	r.Status = status
	r.CompletedAt = &now
	r.LastUpdatedAt = now
	r.LastUpdatedBy = userID
	return nil
}
