package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"contentsearch/internal/domain"
	"contentsearch/internal/metrics"
)

// SyncConfig tunes the orchestrator.
type SyncConfig struct {
	// AdjustDatesToNow respreads fetched publish dates across the
	// freshness tiers. Demo data only; off by default.
	AdjustDatesToNow bool
}

// SyncOrchestrator runs full synchronization passes: fetch from every
// registered provider, score, persist, refresh the index and announce
// completion. At most one pass runs at a time; the semaphore is shared by
// every caller of this instance.
type SyncOrchestrator struct {
	registry  Registry
	scorer    Scorer
	repo      ContentRepository
	index     SearchIndex
	publisher EventPublisher
	syncState SyncStateStore
	metrics   *metrics.Collector
	logger    *slog.Logger
	cfg       SyncConfig

	sem *semaphore.Weighted
}

func NewSyncOrchestrator(
	registry Registry,
	scorer Scorer,
	repo ContentRepository,
	index SearchIndex,
	publisher EventPublisher,
	syncState SyncStateStore,
	collector *metrics.Collector,
	logger *slog.Logger,
	cfg SyncConfig,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry:  registry,
		scorer:    scorer,
		repo:      repo,
		index:     index,
		publisher: publisher,
		syncState: syncState,
		metrics:   collector,
		logger:    logger.With("component", "sync"),
		cfg:       cfg,
		sem:       semaphore.NewWeighted(1),
	}
}

// SyncAll waits for any in-flight pass to finish, then runs a new one.
// It never reports skipped.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) (*domain.SyncReport, error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	defer o.sem.Release(1)

	return o.executeSync(ctx)
}

// TrySyncAll runs a pass unless one is already in flight, in which case it
// returns immediately with a skipped report. A skip is a normal outcome,
// not an error.
func (o *SyncOrchestrator) TrySyncAll(ctx context.Context) (*domain.SyncReport, error) {
	if !o.sem.TryAcquire(1) {
		o.logger.Info("sync already in flight, skipping")
		o.metrics.SyncSkipped()
		return &domain.SyncReport{Skipped: true, SyncedAt: time.Now().UTC()}, nil
	}
	defer o.sem.Release(1)

	return o.executeSync(ctx)
}

// executeSync is the pass body. Callers must hold the semaphore.
func (o *SyncOrchestrator) executeSync(ctx context.Context) (*domain.SyncReport, error) {
	start := time.Now()
	o.logger.Info("starting sync pass")

	var all []domain.Content
	for _, p := range o.registry.All() {
		contents, err := p.FetchAll(ctx)
		if err != nil {
			// One provider failing must not abort the pass.
			o.logger.Error("provider fetch failed, continuing with remaining providers",
				"provider", p.Name(),
				"error", err,
			)
			o.metrics.ProviderFetchFailed(p.Name())
			continue
		}
		o.logger.Info("fetched contents", "provider", p.Name(), "count", len(contents))
		all = append(all, contents...)
	}

	now := time.Now().UTC()

	if len(all) == 0 {
		o.logger.Warn("no contents fetched from any provider")
		return &domain.SyncReport{ItemCount: 0, SyncedAt: now}, nil
	}

	if o.cfg.AdjustDatesToNow {
		adjustPublishedDates(all, now)
	}

	for i := range all {
		all[i].FinalScore = o.scorer.Score(&all[i], now)
	}

	// A store failure aborts the pass: swallowing it would silently
	// diverge the store from reality.
	if err := o.repo.UpsertMany(ctx, all); err != nil {
		o.metrics.SyncFailed()
		return nil, fmt.Errorf("persist contents: %w", err)
	}
	o.logger.Info("persisted contents", "count", len(all))

	if err := o.index.IndexMany(ctx, all); err != nil {
		o.logger.Warn("index refresh failed, search will fall back to the store", "error", err)
	}

	report := &domain.SyncReport{ItemCount: len(all), SyncedAt: now}

	if o.publisher != nil {
		if err := o.publisher.PublishSynced(ctx, *report); err != nil {
			o.logger.Warn("publish synced event failed", "error", err)
		}
	}

	if err := o.updateSyncState(ctx, report); err != nil {
		o.logger.Warn("update sync state failed", "error", err)
	}

	o.metrics.SyncCompleted(len(all))
	o.logger.Info("sync pass completed",
		"count", len(all),
		"duration", time.Since(start),
	)

	return report, nil
}

func (o *SyncOrchestrator) updateSyncState(ctx context.Context, report *domain.SyncReport) error {
	state, err := o.syncState.Get(ctx)
	if err != nil {
		return err
	}

	state.LastSyncedAt = report.SyncedAt
	state.LastCount = report.ItemCount
	state.TotalSynced += int64(report.ItemCount)

	return o.syncState.Update(ctx, state)
}

// adjustPublishedDates respreads publish dates over the freshness tiers so
// that stale demo feeds still exercise the whole scoring range.
func adjustPublishedDates(contents []domain.Content, now time.Time) {
	idx := make([]int, len(contents))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return contents[idx[a]].PublishedAt.After(contents[idx[b]].PublishedAt)
	})

	dayOffsets := []int{-2, -5, -10, -20, -45, -60, -100, -120}
	for rank, i := range idx {
		offset := -(100 + rank*15)
		if rank < len(dayOffsets) {
			offset = dayOffsets[rank]
		}
		contents[i].PublishedAt = now.AddDate(0, 0, offset)
	}
}
