// Package scheduler drives periodic sync passes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"contentsearch/internal/domain"
)

// Syncer runs one sync pass if none is already in flight.
type Syncer interface {
	TrySyncAll(ctx context.Context) (*domain.SyncReport, error)
}

type Scheduler struct {
	syncer      Syncer
	interval    time.Duration
	syncTimeout time.Duration
	logger      *slog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:      syncer,
		interval:    interval,
		syncTimeout: 5 * time.Minute,
		logger:      logger,
	}
}

// Start ticks every interval until ctx is cancelled. The first pass runs
// one interval after Start; the caller decides whether to sync at boot.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()

	report, err := s.syncer.TrySyncAll(syncCtx)
	if err != nil {
		s.logger.Error("scheduled sync failed", "error", err)
		return
	}
	if report.Skipped {
		// Another pass is still running; the next tick will retry.
		s.logger.Info("scheduled sync skipped, previous pass still running")
		return
	}

	s.logger.Info("scheduled sync completed", "item_count", report.ItemCount)
}
