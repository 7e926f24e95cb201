package services

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

// Lock keys. Every mutation of one of these records runs while holding its key.
const (
	LockProductPrefix     = "product:"
	LockReservationPrefix = "reservation:"
	LockAccountPrefix     = "account:"
	LockCustomerPrefix    = "customer:"
)

// Locker serializes work on a set of keys.
type Locker interface {
	// Acquire takes all keys in a fixed order and returns a context recording
	// them together with the function that releases them. Keys already recorded
	// in ctx are not taken again, so nested calls with the returned context
	// never wait on themselves.
	Acquire(ctx context.Context, keys ...string) (context.Context, func(), error)
}

// EventPublisher delivers ledger events after the change they describe has committed.
type EventPublisher interface {
	// Publish queues an event. Delivery is best-effort and never fails the caller.
	Publish(ctx context.Context, event domain.LedgerEvent)
}
