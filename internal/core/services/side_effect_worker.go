package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
)

// SideEffectWorker retries pending payment follow-ups on a fixed interval.
type SideEffectWorker struct {
	svc      portssvc.PaymentWriterSvc
	interval time.Duration
	logger   *slog.Logger
}

// NewSideEffectWorker creates a worker that calls RetryPendingSideEffects every interval.
func NewSideEffectWorker(svc portssvc.PaymentWriterSvc, interval time.Duration, logger *slog.Logger) *SideEffectWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SideEffectWorker{svc: svc, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *SideEffectWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Side effect worker started", slog.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Side effect worker stopped")
			return
		case <-ticker.C:
			if _, err := w.svc.RetryPendingSideEffects(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Side effect retry pass failed", slog.String("error", err.Error()))
			}
		}
	}
}
