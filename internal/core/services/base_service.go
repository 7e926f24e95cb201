package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Locker    portssvc.Locker
	Publisher portssvc.EventPublisher
	Clock     func() time.Time
}

// Now returns the service clock's current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning, attaching err when it is not nil
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	args = append(args, keyvals...)
	logger.Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// lock takes keys through the configured locker. Without one it is a no-op.
func (s *BaseService) lock(ctx context.Context, keys ...string) (context.Context, func(), error) {
	if s.Locker == nil {
		return ctx, func() {}, nil
	}
	lockedCtx, release, err := s.Locker.Acquire(ctx, keys...)
	if err != nil {
		s.LogError(ctx, err, "Failed to acquire lock", slog.Any("keys", keys))
		return ctx, nil, err
	}
	return lockedCtx, release, nil
}

// publish hands an event to the configured publisher.
func (s *BaseService) publish(ctx context.Context, eventType domain.LedgerEventType, key string, payload any) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(ctx, domain.LedgerEvent{
		Type:       eventType,
		Key:        key,
		OccurredAt: s.Now(),
		Payload:    payload,
	})
}

// logRefusal logs business-rule rejections at debug level and everything else as errors.
func (s *BaseService) logRefusal(ctx context.Context, err error, msg string, keyvals ...any) {
	if isCallerError(err) {
		s.LogDebug(ctx, msg, append(keyvals, slog.String("reason", err.Error()))...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}
