package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"campaign_builder/internal/domain"
)

type tagRow struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	Kind      string       `db:"kind"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

func (r tagRow) toDomain() domain.Tag {
	return domain.Tag{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      domain.TagKind(r.Kind),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

// TagStore keeps the last good tag snapshot.
type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// ReplaceAll makes the table hold exactly tags.
func (s *TagStore) ReplaceAll(ctx context.Context, tags []domain.Tag) error {
	exec := GetExecutor(ctx, s.db)

	if len(tags) > 0 {
		rows := make([]tagRow, len(tags))
		for i, t := range tags {
			rows[i] = tagRow{
				ID:        t.ID,
				Name:      t.Name,
				Kind:      string(t.Kind),
				CreatedAt: nullTime(t.CreatedAt),
				UpdatedAt: nullTime(t.UpdatedAt),
			}
		}

		query := `
			INSERT INTO cached_tags (id, name, kind, created_at, updated_at)
			VALUES (:id, :name, :kind, :created_at, :updated_at)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				kind = EXCLUDED.kind,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at,
				synced_at = now()`
		if _, err := sqlx.NamedExecContext(ctx, exec, query, rows); err != nil {
			return fmt.Errorf("upsert tags: %w", err)
		}
	}

	if _, err := exec.ExecContext(ctx,
		"DELETE FROM cached_tags WHERE NOT (id = ANY($1))",
		pq.Array(tagIDs(tags)),
	); err != nil {
		return fmt.Errorf("delete stale tags: %w", err)
	}
	return nil
}

func (s *TagStore) All(ctx context.Context) ([]domain.Tag, error) {
	var rows []tagRow
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		"SELECT id, name, kind, created_at, updated_at FROM cached_tags ORDER BY id")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Tag, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func tagIDs(tags []domain.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
