// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Sleepora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Wire repositories, services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/api"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/content"
	"github.com/taibuivan/sleepora/internal/fulfillment"
	"github.com/taibuivan/sleepora/internal/jobs"
	"github.com/taibuivan/sleepora/internal/orders"
	"github.com/taibuivan/sleepora/internal/platform/cache"
	"github.com/taibuivan/sleepora/internal/platform/config"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/docstore"
	"github.com/taibuivan/sleepora/internal/platform/metrics"
	"github.com/taibuivan/sleepora/internal/platform/migration"
	pgstore "github.com/taibuivan/sleepora/internal/platform/postgres"
	redisstore "github.com/taibuivan/sleepora/internal/platform/redis"
	"github.com/taibuivan/sleepora/internal/platform/sec"
	"github.com/taibuivan/sleepora/internal/shop/cart"
	"github.com/taibuivan/sleepora/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(false)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for background goroutines (rate limiter sweeps).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Platform ───────────────────────────────────────────────────────
	verifier, err := sec.LoadVerifier(cfg.IdentityPublicKeyPath, cfg.IdentityIssuer)
	must(log, err, "load identity public key")

	collectors := metrics.New()
	responseCache := cache.New(rdb, cfg.CacheTTL, collectors)
	documents := docstore.NewPostgresStore(pool)

	brokerOpt, err := jobs.RedisOpt(cfg.RedisURL)
	must(log, err, "parse job broker url")

	broker := asynq.NewClient(brokerOpt)
	defer func() { _ = broker.Close() }()

	inspector := asynq.NewInspector(brokerOpt)
	defer func() { _ = inspector.Close() }()

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	auditService := audit.NewService(audit.NewPostgresRepository(pool), log)

	profileService := profile.NewService(profile.NewPostgresRepository(pool), auditService, log)

	accessService := access.NewService(profileService, access.NewPostgresRuleStore(pool), auditService)
	guard := access.NewGuard(accessService, collectors)

	catalogService := catalog.NewService(
		catalog.NewDocumentProductRepository(documents),
		catalog.NewDocumentCategoryRepository(documents),
		catalog.NewPipeline(language.Make(cfg.CollationLocale)),
		responseCache,
		auditService,
		log,
	)

	cartService := cart.NewService(cart.NewRedisStore(rdb), catalogService, log)

	orderRepository := orders.NewPostgresRepository(pool)
	orderService := orders.NewService(orders.Dependencies{
		Orders:      orderRepository,
		Commissions: orderRepository,
		Inventory:   catalogService,
		Carts:       cartService,
		Profiles:    profileService,
		Courier:     fulfillment.NewClient(cfg.CourierBaseURL, cfg.CourierAPIKey, cfg.CourierTimeout),
		Notifier:    jobs.NewClient(broker, log),
		Recorder:    auditService,
	}, cfg.CommissionRate, log)

	contentService := content.NewService(content.NewDocumentRepository(documents), responseCache, auditService, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Access:    access.NewHandler(accessService, guard),
		Catalog:   catalog.NewHandler(catalogService, guard, responseCache.Middleware),
		Profile:   profile.NewHandler(profileService, guard),
		Cart:      cart.NewHandler(cartService, guard),
		Orders:    orders.NewHandler(orderService, guard, accessService, cfg.CheckoutRatePerMinute),
		Content:   content.NewHandler(contentService, guard, responseCache.Middleware),
		Audit:     audit.NewHandler(auditService, guard),
		Jobs:      jobs.NewHandler(inspector, guard),
	}

	server := api.NewServer(rootCtx, cfg, log, verifier, collectors, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
