package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SideEffectKind names a follow-up a committed payment owes to another record.
type SideEffectKind string

const (
	// EffectCustomerSpent adds the payment amount to the customer's lifetime spend.
	EffectCustomerSpent SideEffectKind = "customer_spent"
	// EffectOrderCompleted marks the originating order completed and paid.
	EffectOrderCompleted SideEffectKind = "order_completed"
	// EffectReservationsSold moves the account's active reservations to sold.
	EffectReservationsSold SideEffectKind = "reservations_sold"
)

// SideEffectStatus tracks whether a follow-up has been carried out.
type SideEffectStatus string

const (
	SideEffectPending SideEffectStatus = "pending"
	SideEffectDone    SideEffectStatus = "done"
)

// SideEffect is an outbox entry written in the same transaction as its payment,
// so a follow-up that fails can be retried later without touching the payment.
type SideEffect struct {
	SideEffectID    string           `json:"sideEffectID"`
	CreditAccountID string           `json:"creditAccountID"`
	PaymentID       string           `json:"paymentID"`
	Kind            SideEffectKind   `json:"kind"`
	Status          SideEffectStatus `json:"status"`
	Amount          decimal.Decimal  `json:"amount"`
	TargetID        string           `json:"targetID"` // Customer or order the effect applies to
	Attempts        int              `json:"attempts"`
	LastError       string           `json:"lastError,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// MarkAttempt records the outcome of one execution attempt.
func (e *SideEffect) MarkAttempt(err error, now time.Time) {
	e.Attempts++
	e.UpdatedAt = now
	if err != nil {
		e.LastError = err.Error()
		return
	}
	e.Status = SideEffectDone
	e.LastError = ""
}

// RetryReport summarizes one pass over the pending follow-ups.
type RetryReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
