package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"campaign_builder/internal/catalog"
	"campaign_builder/internal/config"
	"campaign_builder/internal/domain"
	"campaign_builder/internal/publisher"
	"campaign_builder/internal/service"
	"campaign_builder/internal/source/n8n"
	"campaign_builder/internal/storage/postgres"
	"campaign_builder/internal/webhook"
	"campaign_builder/internal/wizard"
)

// templateFile is the on-disk input of a campaign run.
type templateFile struct {
	Template   domain.CampaignTemplate `json:"template"`
	LeadCounts map[string]int          `json:"lead_counts"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	templatePath := flag.String("template", "", "campaign template JSON file")
	name := flag.String("name", "", "campaign name, defaults to the template name")
	at := flag.String("at", "", `comma separated schedules, e.g. "2026-03-02 10:00,2026-03-09 10:00"`)
	qrPath := flag.String("qr", "", `generate QR codes for the "name,phone" lines of this file and exit`)
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *qrPath != "" {
		if err := generateQRCodes(ctx, cfg, *qrPath, logger); err != nil {
			logger.Error("qr generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *templatePath == "" {
		logger.Error("either -template or -qr is required")
		os.Exit(2)
	}

	campaigns, err := submitTemplate(ctx, cfg, *templatePath, *name, *at, logger)
	if err != nil {
		logger.Error("campaign submission failed", "error", err)
		os.Exit(1)
	}

	for _, c := range campaigns {
		fmt.Printf("%s\t%s\t%d leads\n", c.ID, c.Name, c.TargetCount)
	}
}

func submitTemplate(ctx context.Context, cfg *config.Config, path, name, at string, logger *slog.Logger) ([]domain.Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var tf templateFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if tf.Template.ID == "" {
		tf.Template.ID = "file"
	}

	sourceCfg := n8n.Config{
		TagsURL:     cfg.Endpoints.TagsURL,
		AccountsURL: cfg.Endpoints.AccountsURL,
		Timeout:     cfg.Endpoints.Timeout,
		BaseDelay:   cfg.Sync.BaseDelay,
		MaxPolls:    cfg.Sync.MaxPolls,
	}
	tagClient := n8n.NewTagClient(sourceCfg, logger)
	defer tagClient.Close()
	accountClient := n8n.NewAccountClient(sourceCfg, logger)
	defer accountClient.Close()

	tags := catalog.NewTagRepository(tagClient)
	accounts := catalog.NewAccountRepository(accountClient)
	tags.Refresh(ctx)
	accounts.Refresh(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tags.Phase() == domain.PhaseFailed || accounts.Phase() == domain.PhaseFailed {
		tags, accounts = useStoredSnapshot(ctx, cfg, tags, accounts, logger)
	}
	logger.Info("catalogs loaded",
		"tags", tags.Stats().Total,
		"tags_phase", tags.Phase(),
		"accounts", accounts.Stats().Total,
		"accounts_phase", accounts.Phase(),
	)

	wiz, err := wizard.New(wizard.Deps{
		Tags:      tags,
		Accounts:  accounts,
		Leads:     catalog.NewStaticLeadCounter(tf.LeadCounts),
		Templates: wizard.Templates{tf.Template.ID: tf.Template},
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	if err := wiz.LoadTemplate(tf.Template.ID); err != nil {
		return nil, err
	}
	if name != "" {
		wiz.SetName(name)
	}
	if err := applySchedules(wiz, at); err != nil {
		return nil, err
	}

	if err := wiz.GoTo(wizard.StepReview); err != nil {
		return nil, err
	}
	for _, adv := range wiz.ScheduleAdvisories() {
		logger.Warn("schedule advisory", "index", adv.Index, "kind", adv.Kind, "message", adv.Message)
	}

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		return nil, err
	}
	defer rabbitMQ.Close()

	var notifier service.Notifier
	if cfg.Endpoints.WebhookURL != "" {
		notifier = webhook.NewNotifier(cfg.Endpoints.WebhookURL, cfg.Webhook.User, cfg.Endpoints.Timeout, logger)
	}

	return service.NewSubmissionService(rabbitMQ, notifier, cfg.Webhook.User, logger).Submit(ctx, wiz)
}

// useStoredSnapshot swaps a catalog whose live fetch failed for the snapshot
// kept by the cache syncer. Catalogs that cannot be read from the database
// are returned unchanged.
func useStoredSnapshot(
	ctx context.Context,
	cfg *config.Config,
	tags *catalog.TagRepository,
	accounts *catalog.AccountRepository,
	logger *slog.Logger,
) (*catalog.TagRepository, *catalog.AccountRepository) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		logger.Warn("live fetch failed and stored snapshot is unavailable", "error", err)
		return tags, accounts
	}
	defer db.Close()

	if tags.Phase() == domain.PhaseFailed {
		items, err := postgres.NewTagStore(db).All(ctx)
		if err != nil {
			logger.Warn("read stored tags", "error", err)
		} else {
			logger.Warn("using stored tag snapshot", "reason", tags.LastError(), "tags", len(items))
			tags = catalog.NewTagRepository(catalog.NewStaticSource(items, nil))
		}
	}
	if accounts.Phase() == domain.PhaseFailed {
		items, err := postgres.NewAccountStore(db).All(ctx)
		if err != nil {
			logger.Warn("read stored accounts", "error", err)
		} else {
			logger.Warn("using stored account snapshot", "reason", accounts.LastError(), "accounts", len(items))
			accounts = catalog.NewAccountRepository(catalog.NewStaticSource(items, nil))
		}
	}
	return tags, accounts
}

// applySchedules replaces the template schedule with the ones given in at.
func applySchedules(wiz *wizard.Wizard, at string) error {
	if strings.TrimSpace(at) == "" {
		return nil
	}
	for i, raw := range strings.Split(at, ",") {
		date, clock, ok := strings.Cut(strings.TrimSpace(raw), " ")
		if !ok {
			return fmt.Errorf("schedule %q: want \"YYYY-MM-DD HH:MM\"", raw)
		}
		s := domain.Schedule{Date: date, Time: strings.TrimSpace(clock)}
		if i == 0 {
			if err := wiz.UpdateSchedule(0, s); err != nil {
				return err
			}
			continue
		}
		wiz.AddSchedule(s)
	}
	return nil
}

func generateQRCodes(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read account list: %w", err)
	}
	reqs := webhook.ParseAccountList(string(data))
	if len(reqs) == 0 {
		return fmt.Errorf("no accounts with a phone number in %s", path)
	}

	gen := webhook.NewQRGenerator(cfg.Endpoints.QRURL, cfg.Endpoints.Timeout, cfg.Webhook.QRWorkers, cfg.Webhook.QRRate, logger)
	enc := json.NewEncoder(os.Stdout)
	for _, res := range gen.GenerateAll(ctx, reqs) {
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
