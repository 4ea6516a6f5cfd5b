//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"campaign_builder/internal/domain"
	"campaign_builder/internal/testutil"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_cache.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM cached_tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM cached_accounts")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM sync_state")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) TestTagStore_ReplaceAll_Insert() {
	store := NewTagStore(s.db)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	err := store.ReplaceAll(s.ctx, []domain.Tag{
		{ID: 1, Name: "cliente", Kind: domain.TagKindLead, CreatedAt: created},
		{ID: 2, Name: "vendas", Kind: domain.TagKindAccount},
	})
	s.Require().NoError(err)

	tags, err := store.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tags, 2)
	s.Equal("cliente", tags[0].Name)
	s.Equal(domain.TagKindLead, tags[0].Kind)
	s.True(created.Equal(tags[0].CreatedAt))
	s.True(tags[1].CreatedAt.IsZero())
}

func (s *PostgresIntegrationSuite) TestTagStore_ReplaceAll_UpdatesAndRemoves() {
	store := NewTagStore(s.db)

	s.Require().NoError(store.ReplaceAll(s.ctx, []domain.Tag{
		{ID: 1, Name: "cliente", Kind: domain.TagKindLead},
		{ID: 2, Name: "vip", Kind: domain.TagKindLead},
	}))
	s.Require().NoError(store.ReplaceAll(s.ctx, []domain.Tag{
		{ID: 2, Name: "VIP", Kind: domain.TagKindLead},
		{ID: 3, Name: "black-friday", Kind: domain.TagKindCampaign},
	}))

	tags, err := store.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tags, 2)
	s.Equal(int64(2), tags[0].ID)
	s.Equal("VIP", tags[0].Name)
	s.Equal(int64(3), tags[1].ID)
}

func (s *PostgresIntegrationSuite) TestTagStore_ReplaceAll_Empty() {
	store := NewTagStore(s.db)
	s.Require().NoError(store.ReplaceAll(s.ctx, []domain.Tag{{ID: 1, Name: "a", Kind: domain.TagKindLead}}))

	s.Require().NoError(store.ReplaceAll(s.ctx, nil))

	tags, err := store.All(s.ctx)
	s.NoError(err)
	s.Empty(tags)
}

func (s *PostgresIntegrationSuite) TestAccountStore_ReplaceAll() {
	store := NewAccountStore(s.db)

	s.Require().NoError(store.ReplaceAll(s.ctx, []domain.Account{
		{ID: 1, Name: "Vendas", Phone: "5511999990000", Status: domain.AccountConnected, Reputation: domain.ReputationGood, TagID: testutil.Ptr(int64(2))},
		{ID: 2, Name: "Suporte", Phone: "5511988887777", Status: domain.AccountPending, Reputation: domain.ReputationNeutral},
	}))
	s.Require().NoError(store.ReplaceAll(s.ctx, []domain.Account{
		{ID: 1, Name: "Vendas", Phone: "5511999990000", Status: domain.AccountDisconnected, Reputation: domain.ReputationBad, TagID: testutil.Ptr(int64(2))},
	}))

	accounts, err := store.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal(domain.AccountDisconnected, accounts[0].Status)
	s.Equal(domain.ReputationBad, accounts[0].Reputation)
	s.Require().NotNil(accounts[0].TagID)
	s.Equal(int64(2), *accounts[0].TagID)
}

func (s *PostgresIntegrationSuite) TestSyncStateStore_GetNew() {
	store := NewSyncStateStore(s.db)

	rec, err := store.Get(s.ctx, "n8n-tags")
	s.NoError(err)
	s.NotNil(rec)
	s.Equal("n8n-tags", rec.SourceID)
	s.Equal("idle", rec.Phase)
	s.True(rec.LastSyncedAt.IsZero())
	s.Equal(int64(0), rec.TotalSyncs)
}

func (s *PostgresIntegrationSuite) TestSyncStateStore_UpdateAndGet() {
	store := NewSyncStateStore(s.db)
	now := time.Now().Truncate(time.Microsecond)

	rec := &domain.SyncRecord{
		SourceID:     "n8n-tags",
		Phase:        "ready",
		LastSyncedAt: now,
		ItemCount:    12,
		DroppedCount: 1,
		TotalSyncs:   3,
	}
	s.Require().NoError(store.Update(s.ctx, rec))

	rec.Phase = "failed"
	rec.LastError = "HTTP 502: Bad Gateway"
	rec.TotalSyncs = 4
	s.Require().NoError(store.Update(s.ctx, rec))

	got, err := store.Get(s.ctx, "n8n-tags")
	s.NoError(err)
	s.Equal("failed", got.Phase)
	s.Equal(12, got.ItemCount)
	s.Equal(1, got.DroppedCount)
	s.Equal("HTTP 502: Bad Gateway", got.LastError)
	s.Equal(int64(4), got.TotalSyncs)
	s.WithinDuration(now, got.LastSyncedAt, time.Second)
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	tags := NewTagStore(s.db)
	states := NewSyncStateStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if err := tags.ReplaceAll(ctx, []domain.Tag{{ID: 9, Name: "tx", Kind: domain.TagKindLead}}); err != nil {
			return err
		}
		return states.Update(ctx, &domain.SyncRecord{SourceID: "n8n-tags", Phase: "ready", LastSyncedAt: time.Now(), ItemCount: 1, TotalSyncs: 1})
	})
	s.NoError(err)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM cached_tags WHERE id = $1", 9))
	s.Equal(1, count)
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM sync_state"))
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	tags := NewTagStore(s.db)
	s.Require().NoError(tags.ReplaceAll(s.ctx, []domain.Tag{{ID: 1, Name: "pre-existing", Kind: domain.TagKindLead}}))

	errBoom := errors.New("boom")
	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if err := tags.ReplaceAll(ctx, []domain.Tag{{ID: 2, Name: "should rollback", Kind: domain.TagKindLead}}); err != nil {
			return err
		}
		return errBoom
	})
	s.ErrorIs(err, errBoom)

	all, err := tags.All(s.ctx)
	s.NoError(err)
	s.Require().Len(all, 1)
	s.Equal("pre-existing", all[0].Name)
}
