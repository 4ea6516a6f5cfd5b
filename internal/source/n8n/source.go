package n8n

import (
	"log/slog"
	"time"

	"campaign_builder/internal/domain"
	"campaign_builder/internal/fetcher"
)

const (
	TagsSourceID     = "n8n-tags"
	AccountsSourceID = "n8n-accounts"
)

// Config holds the workflow endpoint settings shared by both clients.
type Config struct {
	TagsURL     string
	AccountsURL string
	Timeout     time.Duration
	BaseDelay   time.Duration
	MaxPolls    int
}

func (c Config) fetcherConfig(name, url string) fetcher.Config {
	return fetcher.Config{
		Name:      name,
		URL:       url,
		Timeout:   c.Timeout,
		BaseDelay: c.BaseDelay,
		MaxPolls:  c.MaxPolls,
	}
}

// NewTagClient creates the sync client for the "read all tags" workflow.
func NewTagClient(cfg Config, logger *slog.Logger, opts ...fetcher.Option) *fetcher.Client[domain.Tag] {
	return fetcher.New(cfg.fetcherConfig(TagsSourceID, cfg.TagsURL), ValidateTag, logger, opts...)
}

// NewAccountClient creates the sync client for the "read all accounts" workflow.
func NewAccountClient(cfg Config, logger *slog.Logger, opts ...fetcher.Option) *fetcher.Client[domain.Account] {
	return fetcher.New(cfg.fetcherConfig(AccountsSourceID, cfg.AccountsURL), ValidateAccount, logger, opts...)
}
