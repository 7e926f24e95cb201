package services

import (
	"time"

	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
)

// systemUserID is recorded as the actor of writes no clerk asked for.
const systemUserID = "system"

// ServiceOption is a functional option shared by the ledger services
type ServiceOption func(*BaseService)

// WithLocker adds the keyed locker used to serialize mutations
func WithLocker(l portssvc.Locker) ServiceOption {
	return func(s *BaseService) {
		s.Locker = l
	}
}

// WithPublisher adds the ledger event publisher
func WithPublisher(p portssvc.EventPublisher) ServiceOption {
	return func(s *BaseService) {
		s.Publisher = p
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func newBaseService(options []ServiceOption) BaseService {
	var b BaseService
	for _, option := range options {
		option(&b)
	}
	return b
}
