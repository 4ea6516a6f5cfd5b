package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"campaign_builder/internal/domain"
)

type TagSource interface {
	Name() string
	Fetch(ctx context.Context, force bool) domain.SyncState[domain.Tag]
}

type AccountSource interface {
	Name() string
	Fetch(ctx context.Context, force bool) domain.SyncState[domain.Account]
}

type TagStore interface {
	ReplaceAll(ctx context.Context, tags []domain.Tag) error
}

type AccountStore interface {
	ReplaceAll(ctx context.Context, accounts []domain.Account) error
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncRecord, error)
	Update(ctx context.Context, rec *domain.SyncRecord) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishCampaigns(ctx context.Context, campaigns []domain.Campaign) error
	Close() error
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// CampaignBuilder assembles the campaigns of a finished draft.
// *wizard.Wizard satisfies it.
type CampaignBuilder interface {
	Submit() ([]domain.Campaign, error)
}
