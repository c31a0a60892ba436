package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/config"
	"github.com/dejobratic/cafepos/internal/database"
	idemmemory "github.com/dejobratic/cafepos/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/cafepos/internal/idempotency/postgres"
	idemredis "github.com/dejobratic/cafepos/internal/idempotency/redis"
	"github.com/dejobratic/cafepos/internal/notify"
	"github.com/dejobratic/cafepos/internal/orders/adapters"
	httpadapter "github.com/dejobratic/cafepos/internal/orders/adapters/http"
	ordersmemory "github.com/dejobratic/cafepos/internal/orders/adapters/memory"
	orderspostgres "github.com/dejobratic/cafepos/internal/orders/adapters/postgres"
	"github.com/dejobratic/cafepos/internal/orders/adapters/printer"
	ordersapp "github.com/dejobratic/cafepos/internal/orders/app"
	ordersmetrics "github.com/dejobratic/cafepos/internal/orders/metrics"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/dejobratic/cafepos/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const purgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTelInsecure,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	meter := otel.Meter("github.com/dejobratic/cafepos")
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	notifyMetrics, err := notify.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create notification metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	menu, err := catalog.Load(cfg.Orders.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.Orders.CatalogPath, "error", err)
		os.Exit(1)
	}

	checks := map[string]httpadapter.ReadinessCheck{}
	var closers []func() error

	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		pool, err = database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		checks["database"] = func(ctx context.Context) error { return database.CheckHealth(ctx, pool) }

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			version, err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath)
			if err != nil {
				logger.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}
			logger.Info("migrations completed successfully", "schema_version", version)
		}
	}

	var repo ports.OrderRepository = ordersmemory.NewRepository()
	if cfg.Orders.Store == config.StorePostgres {
		repo = orderspostgres.NewRepository(pool)
	}
	repo = adapters.NewObservableRepository(repo, cfg.Orders.Store, dbMetrics)

	var idemStore ports.IdempotencyStore
	switch cfg.Orders.IdempotencyStore {
	case config.StoreRedis:
		client, err := idemredis.Dial(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		closers = append(closers, client.Close)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		idemStore = idemredis.NewStore(client, cfg.Redis.IdempotencyTTL)
	case config.StorePostgres:
		store := idempostgres.NewStore(pool, cfg.Redis.IdempotencyTTL)
		go purgeIdempotencyKeys(ctx, store, logger)
		idemStore = store
	default:
		idemStore = idemmemory.NewStore(cfg.Redis.IdempotencyTTL)
	}
	idemStore = adapters.NewObservableIdempotencyStore(idemStore, cfg.Orders.IdempotencyStore, dbMetrics)

	var eventBus ports.EventBus = notify.NewNoopEventBus()
	if cfg.Broker.URL != "" {
		publisher, err := notify.DialRabbitMQ(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		closers = append(closers, publisher.Close)
		checks["broker"] = func(context.Context) error { return publisher.Ping() }
		eventBus = publisher
	}
	eventBus = adapters.NewObservableEventBus(eventBus, notifyMetrics)

	service := ordersapp.NewService(
		repo,
		eventBus,
		idemStore,
		printer.NewTextPrinter(os.Stdout),
		menu,
		ordersapp.Options{DiscountPerCup: cfg.Orders.DiscountPerCup},
		logger,
		orderMetrics,
	)

	ordersHandler := httpadapter.NewHandler(service, logger)
	router := httpadapter.NewRouter(ordersHandler, httpMetrics, logger, checks)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           otelhttp.NewHandler(router, cfg.Service.Name),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting",
			"port", cfg.HTTP.Port,
			"orders_store", cfg.Orders.Store,
			"idempotency_store", cfg.Orders.IdempotencyStore,
			"broker", cfg.Broker.URL != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	errs := []error{srv.Shutdown(shutdownCtx)}
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	errs = append(errs, tel.Shutdown(shutdownCtx))

	if err := errors.Join(errs...); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("http server stopped")
}

func purgeIdempotencyKeys(ctx context.Context, store *idempostgres.Store, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Purge(ctx)
			if err != nil {
				logger.WarnContext(ctx, "idempotency purge failed", "error", err)
				continue
			}
			logger.DebugContext(ctx, "idempotency keys purged", "removed", removed)
		}
	}
}
