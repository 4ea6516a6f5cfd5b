package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"campaign_builder/internal/config"
	"campaign_builder/internal/scheduler"
	"campaign_builder/internal/service"
	"campaign_builder/internal/source/n8n"
	"campaign_builder/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	tagStore := postgres.NewTagStore(db)
	accountStore := postgres.NewAccountStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	txManager := postgres.NewTransactionManager(db)

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

	syncService := service.NewCacheSyncService(
		tagClient,
		accountClient,
		tagStore,
		accountStore,
		syncStateStore,
		txManager,
		logger,
	)

	sched := scheduler.NewScheduler(syncService, cfg.Sync.Interval, cfg.Sync.RunTimeout, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, refreshing caches")
				sched.Trigger()
			}
		}
	}()

	logger.Info("starting cache syncer",
		"tags_url", cfg.Endpoints.TagsURL,
		"accounts_url", cfg.Endpoints.AccountsURL,
		"interval", cfg.Sync.Interval,
		"max_polls", cfg.Sync.MaxPolls,
	)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
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

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
