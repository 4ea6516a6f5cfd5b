package scheduler

import (
	"context"
	"log/slog"
	"time"

	"campaign_builder/internal/domain"
)

const DefaultRunTimeout = 5 * time.Minute

// Syncer refreshes the cached collections once.
type Syncer interface {
	Sync(ctx context.Context) ([]domain.SyncStats, error)
}

// Scheduler runs Sync on start, on every interval tick and whenever Trigger
// is called. Runs never overlap.
type Scheduler struct {
	syncer     Syncer
	interval   time.Duration
	runTimeout time.Duration
	trigger    chan struct{}
	logger     *slog.Logger
}

func NewScheduler(syncer Syncer, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if runTimeout <= 0 {
		runTimeout = DefaultRunTimeout
	}
	return &Scheduler{
		syncer:     syncer,
		interval:   interval,
		runTimeout: runTimeout,
		trigger:    make(chan struct{}, 1),
		logger:     logger.With("component", "scheduler"),
	}
}

// Trigger requests an extra run. Requests made while one is already queued
// are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "run_timeout", s.runTimeout)

	s.runSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		case <-s.trigger:
			s.logger.Debug("manual sync requested")
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	stats, err := s.syncer.Sync(syncCtx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
	}
	for _, st := range stats {
		s.logger.Info("source synced",
			"source", st.SourceID,
			"phase", st.Phase,
			"items", st.Items,
			"dropped", st.Dropped,
			"retries", st.RetryCount,
			"duration", st.Duration,
		)
	}
}
