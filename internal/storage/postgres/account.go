package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"campaign_builder/internal/domain"
)

type accountRow struct {
	ID         int64         `db:"id"`
	Name       string        `db:"name"`
	Phone      string        `db:"phone"`
	Status     string        `db:"status"`
	Reputation string        `db:"reputation"`
	TagID      sql.NullInt64 `db:"tag_id"`
	CreatedAt  sql.NullTime  `db:"created_at"`
	UpdatedAt  sql.NullTime  `db:"updated_at"`
}

func (r accountRow) toDomain() domain.Account {
	acc := domain.Account{
		ID:         r.ID,
		Name:       r.Name,
		Phone:      r.Phone,
		Status:     domain.AccountStatus(r.Status),
		Reputation: domain.Reputation(r.Reputation),
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
	if r.TagID.Valid {
		id := r.TagID.Int64
		acc.TagID = &id
	}
	return acc
}

// AccountStore keeps the last good account snapshot.
type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) ReplaceAll(ctx context.Context, accounts []domain.Account) error {
	exec := GetExecutor(ctx, s.db)

	ids := make([]int64, len(accounts))
	if len(accounts) > 0 {
		rows := make([]accountRow, len(accounts))
		for i, a := range accounts {
			ids[i] = a.ID
			rows[i] = accountRow{
				ID:         a.ID,
				Name:       a.Name,
				Phone:      a.Phone,
				Status:     string(a.Status),
				Reputation: string(a.Reputation),
				CreatedAt:  nullTime(a.CreatedAt),
				UpdatedAt:  nullTime(a.UpdatedAt),
			}
			if a.TagID != nil {
				rows[i].TagID = sql.NullInt64{Int64: *a.TagID, Valid: true}
			}
		}

		query := `
			INSERT INTO cached_accounts (id, name, phone, status, reputation, tag_id, created_at, updated_at)
			VALUES (:id, :name, :phone, :status, :reputation, :tag_id, :created_at, :updated_at)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				phone = EXCLUDED.phone,
				status = EXCLUDED.status,
				reputation = EXCLUDED.reputation,
				tag_id = EXCLUDED.tag_id,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at,
				synced_at = now()`
		if _, err := sqlx.NamedExecContext(ctx, exec, query, rows); err != nil {
			return fmt.Errorf("upsert accounts: %w", err)
		}
	}

	if _, err := exec.ExecContext(ctx,
		"DELETE FROM cached_accounts WHERE NOT (id = ANY($1))",
		pq.Array(ids),
	); err != nil {
		return fmt.Errorf("delete stale accounts: %w", err)
	}
	return nil
}

func (s *AccountStore) All(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, `
		SELECT id, name, phone, status, reputation, tag_id, created_at, updated_at
		FROM cached_accounts
		ORDER BY id`)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Account, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
