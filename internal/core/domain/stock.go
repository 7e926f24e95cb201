package domain

import "time"

// StockMovementReason classifies an entry of the stock history.
type StockMovementReason string

const (
	StockReservation        StockMovementReason = "reservation"
	StockReservationRelease StockMovementReason = "reservation_release"
	StockSale               StockMovementReason = "sale"
	StockAdjustment         StockMovementReason = "adjustment"
)

// StockMovement is an append-only audit record of a single stock mutation.
type StockMovement struct {
	MovementID  string              `json:"movementID"`
	ProductID   string              `json:"productID"`
	Delta       int                 `json:"delta"` // Negative when stock leaves the shelf
	StockBefore int                 `json:"stockBefore"`
	StockAfter  int                 `json:"stockAfter"`
	Reason      StockMovementReason `json:"reason"`
	Reference   string              `json:"reference"` // e.g. "reservation:<id>"
	Notes       string              `json:"notes"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy"`
}

// ReservationReference is the stock-history reference used for a reservation.
func ReservationReference(reservationID string) string {
	return "reservation:" + reservationID
}

// IsManual reports whether a clerk may record r directly through an adjustment.
func (r StockMovementReason) IsManual() bool {
	return r == StockAdjustment || r == StockSale
}
