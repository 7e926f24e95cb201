package domain

import "time"

// LedgerEventType names a fact published after a ledger change commits.
type LedgerEventType string

const (
	EventReservationCreated  LedgerEventType = "reservation.created"
	EventReservationReleased LedgerEventType = "reservation.released"
	EventPaymentApplied      LedgerEventType = "credit.payment.applied"
	EventAccountPaidOff      LedgerEventType = "credit.account.paid_off"
)

// LedgerEvent is the envelope published to the event stream. Key orders events
// of the same aggregate on one partition.
type LedgerEvent struct {
	Type       LedgerEventType `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    any             `json:"payload"`
}
