package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditAccount is a row of the credit_accounts table.
type CreditAccount struct {
	CreditAccountID  string          `db:"credit_account_id"`
	CustomerID       string          `db:"customer_id"`
	AccountNumber    string          `db:"account_number"`
	Status           string          `db:"status"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	PaidAmount       decimal.Decimal `db:"paid_amount"`
	RemainingAmount  decimal.Decimal `db:"remaining_amount"`
	Installments     int             `db:"installments"`
	InstallmentValue decimal.Decimal `db:"installment_value"`
	PaymentFrequency string          `db:"payment_frequency"`
	FirstPaymentDate time.Time       `db:"first_payment_date"`
	NextPaymentDate  *time.Time      `db:"next_payment_date"`
	OrderID          *string         `db:"order_id"`
	OrderReference   *string         `db:"order_reference"`
	Notes            string          `db:"notes"`
	ClosedAt         *time.Time      `db:"closed_at"`
	AuditFields
}

// CreditAccountItem is a row of the credit_account_items table.
type CreditAccountItem struct {
	ItemID              string          `db:"item_id"`
	CreditAccountID     string          `db:"credit_account_id"`
	ProductID           *string         `db:"product_id"`
	ReservationID       *string         `db:"reservation_id"`
	ProductNameSnapshot string          `db:"product_name_snapshot"`
	Quantity            int             `db:"quantity"`
	UnitPriceSnapshot   decimal.Decimal `db:"unit_price_snapshot"`
	LineTotal           decimal.Decimal `db:"line_total"`
	CreatedAt           time.Time       `db:"created_at"`
}

// CreditPayment is a row of the credit_payments table.
type CreditPayment struct {
	PaymentID       string          `db:"payment_id"`
	CreditAccountID string          `db:"credit_account_id"`
	Amount          decimal.Decimal `db:"amount"`
	Method          string          `db:"method"`
	Notes           string          `db:"notes"`
	PaidAfter       decimal.Decimal `db:"paid_after"`
	RemainingAfter  decimal.Decimal `db:"remaining_after"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       string          `db:"created_by"`
}

// SideEffect is a row of the credit_side_effects outbox.
type SideEffect struct {
	SideEffectID    string          `db:"side_effect_id"`
	CreditAccountID string          `db:"credit_account_id"`
	PaymentID       string          `db:"payment_id"`
	Kind            string          `db:"kind"`
	Status          string          `db:"status"`
	Amount          decimal.Decimal `db:"amount"`
	TargetID        string          `db:"target_id"`
	Attempts        int             `db:"attempts"`
	LastError       string          `db:"last_error"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}
