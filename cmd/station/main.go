package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/kibanda-labs/cafeteria-pos/api/controllers"
	"github.com/kibanda-labs/cafeteria-pos/api/routes"
	"github.com/kibanda-labs/cafeteria-pos/internal/cart"
	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	"github.com/kibanda-labs/cafeteria-pos/internal/checkout"
	"github.com/kibanda-labs/cafeteria-pos/internal/cron"
	"github.com/kibanda-labs/cafeteria-pos/internal/ledger"
	"github.com/kibanda-labs/cafeteria-pos/internal/loyalty"
	"github.com/kibanda-labs/cafeteria-pos/internal/reports"
	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	"github.com/kibanda-labs/cafeteria-pos/pkg/config"
	"github.com/kibanda-labs/cafeteria-pos/pkg/db"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/metrics"
	"github.com/kibanda-labs/cafeteria-pos/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "station"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "station",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendClient, err := backend.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(ctx, "failed to build backend client", err)
		os.Exit(1)
	}

	var closers []func() error

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
	}

	ledgerRepo := ledger.NewMemoryRepository()
	var dbClient *db.Client
	if cfg.Ledger.UseSQLite() {
		dbClient, err = db.New(ctx, cfg.Ledger, logg)
		if err != nil {
			logg.Error(ctx, "failed to open ledger database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)
		ledgerRepo = ledger.NewRepository(dbClient.DB())
	}

	ledgerService, err := ledger.NewService(ledgerRepo, cfg.Ledger.DisplayLimit)
	if err != nil {
		logg.Error(ctx, "failed to build ledger service", err)
		os.Exit(1)
	}

	catalogCache, err := catalog.NewCache(backendClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to build catalog cache", err)
		os.Exit(1)
	}
	if err := catalogCache.Load(ctx); err != nil {
		// the refresh job retries; the station comes up with an empty menu
		logg.Error(ctx, "initial catalog load failed", err)
	}

	cartStore, err := cart.NewStore(catalogCache)
	if err != nil {
		logg.Error(ctx, "failed to build cart", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	orchestrator, err := checkout.NewOrchestrator(checkout.Params{
		Cart:    cartStore,
		Catalog: catalogCache,
		Ledger:  ledgerService,
		Backend: backendClient,
		Logger:  logg,
		Metrics: checkoutMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to build checkout orchestrator", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(backendClient, catalogCache, ledgerService)
	if err != nil {
		logg.Error(ctx, "failed to build reports service", err)
		os.Exit(1)
	}

	var loyaltyService loyalty.Service
	if redisClient != nil {
		loyaltyService, err = loyalty.NewService(redisClient, logg)
		if err != nil {
			logg.Error(ctx, "failed to build loyalty service", err)
			os.Exit(1)
		}
	}

	if cfg.Refresh.Enabled {
		go runRefreshWorker(ctx, cfg, logg, jobMetrics, catalogCache, redisClient)
	}

	pingers := map[string]controllers.Pinger{"backend": backendClient}
	if redisClient != nil {
		pingers["redis"] = redisClient
	}
	if dbClient != nil {
		pingers["ledger"] = dbClient
	}

	router := routes.NewRouter(routes.Params{
		Config:   cfg,
		Logger:   logg,
		Catalog:  catalogCache,
		Cart:     cartStore,
		Checkout: orchestrator,
		Reports:  reportsService,
		Loyalty:  loyaltyService,
		Pingers:  pingers,
		Registry: registry,
	})

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"station": cfg.Station.Name,
	})
	logg.Info(startCtx, "starting station server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "station server stopped unexpectedly", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(startCtx, "server shutdown failed", err)
	}

	var closeErr error
	for _, closeFn := range closers {
		closeErr = multierr.Append(closeErr, closeFn())
	}
	if closeErr != nil {
		logg.Error(startCtx, "error closing resources", closeErr)
		os.Exit(1)
	}
}

func runRefreshWorker(ctx context.Context, cfg *config.Config, logg *logger.Logger, jobMetrics *metrics.JobMetrics, cache *catalog.Cache, redisClient *redis.Client) {
	refreshJob, err := cron.NewCatalogRefreshJob(cache)
	if err != nil {
		logg.Error(ctx, "failed to build refresh job", err)
		return
	}

	var lock cron.Lock = cron.NoopLock{}
	if redisClient != nil {
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey("catalog_refresh"), cfg.Refresh.LockTTL)
		if err != nil {
			logg.Error(ctx, "failed to build refresh lock", err)
			return
		}
	}

	worker, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(refreshJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Refresh.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to build refresh worker", err)
		return
	}
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "refresh worker stopped", err)
	}
}
