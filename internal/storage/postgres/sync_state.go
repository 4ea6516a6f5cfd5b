package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"campaign_builder/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

// Get returns the record of sourceID, or an empty one for a source never
// synced.
func (s *SyncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncRecord, error) {
	var rec domain.SyncRecord
	query := `
		SELECT id, source_id, phase, last_synced_at, item_count, dropped_count, last_error, total_syncs
		FROM sync_state
		WHERE source_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &rec, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SyncRecord{SourceID: sourceID, Phase: string(domain.PhaseIdle)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SyncStateStore) Update(ctx context.Context, rec *domain.SyncRecord) error {
	query := `
		INSERT INTO sync_state (source_id, phase, last_synced_at, item_count, dropped_count, last_error, total_syncs)
		VALUES (:source_id, :phase, :last_synced_at, :item_count, :dropped_count, :last_error, :total_syncs)
		ON CONFLICT (source_id) DO UPDATE SET
			phase = EXCLUDED.phase,
			last_synced_at = EXCLUDED.last_synced_at,
			item_count = EXCLUDED.item_count,
			dropped_count = EXCLUDED.dropped_count,
			last_error = EXCLUDED.last_error,
			total_syncs = EXCLUDED.total_syncs`

	_, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, rec)
	return err
}
