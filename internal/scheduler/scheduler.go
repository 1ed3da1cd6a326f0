package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Refresher refreshes every remote-backed category.
type Refresher interface {
	RefreshAll(ctx context.Context) bool
}

// Scheduler runs a full refresh on a fixed interval, the background
// counterpart to user-triggered refreshes.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
}

func NewScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runRefresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if ok := s.refresher.RefreshAll(refreshCtx); !ok {
		s.logger.Error("background refresh incomplete")
	}
}
