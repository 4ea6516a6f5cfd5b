package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campaign_builder/internal/domain"
)

// CacheSyncService mirrors the remote tags and accounts into the snapshot
// store. A failed fetch leaves the previous snapshot in place.
type CacheSyncService struct {
	tagSource     TagSource
	accountSource AccountSource
	tags          TagStore
	accounts      AccountStore
	syncState     SyncStateStore
	txManager     TransactionManager
	logger        *slog.Logger
	now           func() time.Time
}

func NewCacheSyncService(
	tagSource TagSource,
	accountSource AccountSource,
	tags TagStore,
	accounts AccountStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *CacheSyncService {
	return &CacheSyncService{
		tagSource:     tagSource,
		accountSource: accountSource,
		tags:          tags,
		accounts:      accounts,
		syncState:     syncState,
		txManager:     txManager,
		logger:        logger,
		now:           time.Now,
	}
}

// Sync refreshes both sources and returns one SyncStats per source. The
// error reports storage failures; fetch failures only show up in the stats.
func (s *CacheSyncService) Sync(ctx context.Context) ([]domain.SyncStats, error) {
	tagStats, tagErr := syncSource(ctx, s, s.tagSource.Name(), s.tagSource.Fetch, s.tags.ReplaceAll)
	if ctx.Err() != nil {
		return []domain.SyncStats{tagStats}, errors.Join(tagErr, ctx.Err())
	}

	accStats, accErr := syncSource(ctx, s, s.accountSource.Name(), s.accountSource.Fetch, s.accounts.ReplaceAll)

	return []domain.SyncStats{tagStats, accStats}, errors.Join(tagErr, accErr)
}

func syncSource[T any](
	ctx context.Context,
	s *CacheSyncService,
	sourceID string,
	fetch func(context.Context, bool) domain.SyncState[T],
	replace func(context.Context, []T) error,
) (domain.SyncStats, error) {
	logger := s.logger.With("source", sourceID)
	start := s.now()
	logger.Info("starting sync")

	st := fetch(ctx, true)
	stats := domain.SyncStats{
		SourceID:   sourceID,
		Phase:      st.Phase,
		Items:      len(st.Items),
		Dropped:    st.Dropped,
		RetryCount: st.RetryCount,
		Error:      st.LastError,
	}

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("sync %s: %w", sourceID, err)
	}
	if !st.Phase.Terminal() {
		logger.Warn("fetch did not settle, skipping", "phase", st.Phase)
		stats.Duration = s.now().Sub(start)
		return stats, nil
	}

	rec, err := s.syncState.Get(ctx, sourceID)
	if err != nil {
		return stats, fmt.Errorf("get sync state %s: %w", sourceID, err)
	}
	rec.SourceID = sourceID
	rec.Phase = string(st.Phase)
	rec.LastSyncedAt = s.now()
	rec.DroppedCount = st.Dropped
	rec.LastError = st.LastError
	rec.TotalSyncs++

	if st.Phase == domain.PhaseFailed {
		if err := s.syncState.Update(ctx, rec); err != nil {
			return stats, fmt.Errorf("update sync state %s: %w", sourceID, err)
		}
		stats.Duration = s.now().Sub(start)
		logger.Warn("sync failed, keeping previous snapshot",
			"error", st.LastError,
			"retries", st.RetryCount,
			"duration", stats.Duration,
		)
		return stats, nil
	}

	rec.ItemCount = len(st.Items)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := replace(txCtx, st.Items); err != nil {
			return fmt.Errorf("replace snapshot: %w", err)
		}
		if err := s.syncState.Update(txCtx, rec); err != nil {
			return fmt.Errorf("update sync state: %w", err)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("store %s: %w", sourceID, err)
	}

	stats.Duration = s.now().Sub(start)
	logger.Info("sync completed",
		"items", stats.Items,
		"dropped", stats.Dropped,
		"retries", stats.RetryCount,
		"duration", stats.Duration,
	)
	return stats, nil
}
