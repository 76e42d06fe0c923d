// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command worker processes Sleepora background jobs: order emails, commission
// accrual and the periodic courier tracking refresh.
//
// It shares configuration with cmd/api and exposes /metrics and /health on
// WORKER_METRICS_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/text/language"

	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/fulfillment"
	"github.com/taibuivan/sleepora/internal/jobs"
	"github.com/taibuivan/sleepora/internal/orders"
	"github.com/taibuivan/sleepora/internal/platform/config"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/docstore"
	"github.com/taibuivan/sleepora/internal/platform/metrics"
	pgstore "github.com/taibuivan/sleepora/internal/platform/postgres"
	redisstore "github.com/taibuivan/sleepora/internal/platform/redis"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/internal/shop/cart"
	"github.com/taibuivan/sleepora/internal/users/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("startup_failure", slog.String("step", "load configuration"), slog.Any("error", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "sleepora-worker"))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker_failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("worker_stopped_cleanly")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	brokerOpt, err := jobs.RedisOpt(cfg.RedisURL)
	if err != nil {
		return err
	}
	broker := asynq.NewClient(brokerOpt)
	defer func() { _ = broker.Close() }()

	collectors := metrics.New()
	documents := docstore.NewPostgresStore(pool)

	auditService := audit.NewService(audit.NewPostgresRepository(pool), log)
	profileService := profile.NewService(profile.NewPostgresRepository(pool), auditService, log)

	// Catalogue writes from the worker only touch stock; no response cache here.
	catalogService := catalog.NewService(
		catalog.NewDocumentProductRepository(documents),
		catalog.NewDocumentCategoryRepository(documents),
		catalog.NewPipeline(language.Make(cfg.CollationLocale)),
		nil,
		auditService,
		log,
	)

	orderRepository := orders.NewPostgresRepository(pool)
	orderService := orders.NewService(orders.Dependencies{
		Orders:      orderRepository,
		Commissions: orderRepository,
		Inventory:   catalogService,
		Carts:       cart.NewService(cart.NewRedisStore(rdb), catalogService, log),
		Profiles:    profileService,
		Courier:     fulfillment.NewClient(cfg.CourierBaseURL, cfg.CourierAPIKey, cfg.CourierTimeout),
		Notifier:    jobs.NewClient(broker, log),
		Recorder:    auditService,
	}, cfg.CommissionRate, log)

	processor := jobs.NewProcessor(orderService, profileService, jobs.NewLogMailer(log), collectors, log)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		Redis:       brokerOpt,
		Concurrency: cfg.WorkerConcurrency,
		RefreshCron: cfg.TrackingRefreshCron,
		Logger:      log,
	}, processor)
	if err != nil {
		return err
	}

	observability := observabilityServer(cfg.WorkerMetricsPort, collectors)
	go func() {
		if err := observability.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_server_failed", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = observability.Shutdown(shutdownCtx)
	}()

	log.Info("worker_starting",
		slog.Int("concurrency", cfg.WorkerConcurrency),
		slog.String("refresh_cron", cfg.TrackingRefreshCron),
	)
	return worker.Run(ctx)
}

func observabilityServer(port string, collectors *metrics.Metrics) *http.Server {
	router := chi.NewRouter()
	router.Method(http.MethodGet, "/metrics", collectors.Handler())
	router.Get("/health", func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, map[string]string{"status": "ok", "version": constants.AppVersion})
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}
}
