// Package scheduler drives the periodic confirmation rounds.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"eventplanner/internal/ports/input"
)

type Scheduler struct {
	confirmations input.ConfirmationUseCase
	interval      time.Duration
	logger        *slog.Logger
}

func New(confirmations input.ConfirmationUseCase, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{confirmations: confirmations, interval: interval, logger: logger}
}

// Run ticks every interval until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("confirmation scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("confirmation scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick sends due confirmation requests, then due reminders. A failing round
// does not stop the other one.
func (s *Scheduler) Tick(ctx context.Context) {
	if err := s.confirmations.SendConfirmationRequests(ctx); err != nil {
		s.logger.Error("confirmation requests failed", "error", err)
	}
	if err := s.confirmations.SendConfirmationReminders(ctx); err != nil {
		s.logger.Error("confirmation reminders failed", "error", err)
	}
}
