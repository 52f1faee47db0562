package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"contentsearch/internal/api"
	"contentsearch/internal/config"
	"contentsearch/internal/consumer"
	"contentsearch/internal/metrics"
	"contentsearch/internal/provider"
	"contentsearch/internal/publisher"
	"contentsearch/internal/scheduler"
	"contentsearch/internal/scoring"
	"contentsearch/internal/search"
	"contentsearch/internal/service"
	"contentsearch/internal/storage/cache"
	"contentsearch/internal/storage/postgres"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.Addr)

	index := search.NewIndex(cfg.Meilisearch.Host, cfg.Meilisearch.APIKey, cfg.Meilisearch.Index, logger)
	if err := index.EnsureIndex(ctx); err != nil {
		// The service can run store-only; the router picks the index
		// back up once it answers health checks.
		logger.Warn("search index unavailable, searches will use the store", "error", err)
	} else {
		logger.Info("search index ready", "index", cfg.Meilisearch.Index)
	}

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	invalidator, err := consumer.NewCacheInvalidator(consumer.Config{
		URL:       cfg.RabbitMQ.URL,
		QueueName: cfg.RabbitMQ.QueueName,
	}, redisCache, logger)
	if err != nil {
		logger.Error("failed to start cache invalidation consumer", "error", err)
		os.Exit(1)
	}
	defer invalidator.Close()

	go func() {
		if err := invalidator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("cache invalidation consumer error", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	contentStore := postgres.NewContentStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	cachedRepo := cache.NewCachedContentRepository(
		contentStore, redisCache,
		cfg.Cache.SearchTTL, cfg.Cache.ContentTTL,
		logger,
	)

	providers := provider.NewRegistry(
		provider.NewJSONProvider(providerConfig(cfg.Providers.JSON, cfg.Providers.Retry), logger),
		provider.NewXMLProvider(providerConfig(cfg.Providers.XML, cfg.Providers.Retry), logger),
	)

	orchestrator := service.NewSyncOrchestrator(
		providers,
		scoring.NewScorer(),
		cachedRepo,
		index,
		rabbitMQ,
		syncStateStore,
		collector,
		logger,
		service.SyncConfig{AdjustDatesToNow: cfg.Sync.AdjustDatesToNow},
	)

	searchService := service.NewSearchService(cachedRepo, index, collector, logger)

	if cfg.Sync.SyncOnStart {
		if report, err := orchestrator.SyncAll(ctx); err != nil {
			logger.Error("initial sync failed", "error", err)
		} else {
			logger.Info("initial sync completed", "item_count", report.ItemCount)
		}
	}

	sched := scheduler.NewScheduler(orchestrator, cfg.Sync.Interval, logger)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	router := api.NewRouter(&api.RouterDeps{
		Searcher: searchService,
		Syncer:   orchestrator,
		Metrics:  collector,
		Registry: registry,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func providerConfig(p config.ProviderConfig, r config.RetryConfig) provider.Config {
	return provider.Config{
		BaseURL:        p.BaseURL,
		Timeout:        p.Timeout,
		MaxAttempts:    r.MaxAttempts,
		InitialBackoff: r.InitialBackoff,
		MaxBackoff:     r.MaxBackoff,
	}
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
