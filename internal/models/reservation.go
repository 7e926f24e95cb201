package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation is a row of the reservations table.
type Reservation struct {
	ReservationID       string          `db:"reservation_id"`
	ProductID           string          `db:"product_id"`
	CustomerName        string          `db:"customer_name"`
	CustomerID          *string         `db:"customer_id"` // Nullable
	Quantity            int             `db:"quantity"`
	UnitPriceSnapshot   decimal.Decimal `db:"unit_price_snapshot"`
	PromisedPaymentDate time.Time       `db:"promised_payment_date"`
	Status              string          `db:"status"`
	CreditAccountID     *string         `db:"credit_account_id"` // Nullable
	Notes               string          `db:"notes"`
	CompletedAt         *time.Time      `db:"completed_at"`
	AuditFields
}
