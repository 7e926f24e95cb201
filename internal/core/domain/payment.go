package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentPix          PaymentMethod = "pix"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOther        PaymentMethod = "other"
)

// Payment is an immutable record of money applied to a credit account.
type Payment struct {
	PaymentID       string          `json:"paymentID"`
	CreditAccountID string          `json:"creditAccountID"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	Notes           string          `json:"notes"`
	PaidAfter       decimal.Decimal `json:"paidAfter"`      // Account paid amount once this payment applied
	RemainingAfter  decimal.Decimal `json:"remainingAfter"` // Account remaining amount once this payment applied
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// PaymentOutcome is what the reconciliation engine reports back for one payment.
type PaymentOutcome struct {
	Account       CreditAccount `json:"account"`
	Payment       Payment       `json:"payment"`
	WillBePaidOff bool          `json:"willBePaidOff"` // Decided before the payment was committed
	PaidOff       bool          `json:"paidOff"`
	Warnings      []string      `json:"warnings,omitempty"`
}

// PaymentPreview is the confirmation shown to the clerk before committing a payment.
type PaymentPreview struct {
	CreditAccountID  string          `json:"creditAccountID"`
	Amount           decimal.Decimal `json:"amount"`
	CurrentRemaining decimal.Decimal `json:"currentRemaining"`
	RemainingAfter   decimal.Decimal `json:"remainingAfter"`
	WillBePaidOff    bool            `json:"willBePaidOff"`
}

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentDebitCard, PaymentCreditCard, PaymentBankTransfer, PaymentOther:
		return true
	}
	return false
}
