// Package main is the entry point for the quote service.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/kafka"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/memory"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/pdf"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/postgres"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/redis"
	"github.com/jsamuelsen/autoshop-quotes/internal/app"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/features"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/metrics"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/telemetry"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger, logCloser := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer logCloser.Close()

	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("database", cfg.Database.Driver),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Metrics registry and health registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	quoteMetrics := metrics.NewQuotes(registry)

	healthRegistry := ports.NewHealthRegistry()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("closing dependency", slog.Any("error", err))
			}
		}
	}()

	// 6. Quote store
	repo, err := newRepository(ctx, cfg, logger, healthRegistry, &closers)
	if err != nil {
		return err
	}

	// 7. Catalog, optionally behind the shared cache
	catalog, err := newCatalog(ctx, cfg, logger, quoteMetrics, healthRegistry, &closers)
	if err != nil {
		return err
	}

	// 8. Event publisher
	var publisher ports.EventPublisher
	if cfg.Events.Enabled {
		kp, err := kafka.NewPublisher(cfg.Events, logger)
		if err != nil {
			return fmt.Errorf("creating event publisher: %w", err)
		}

		closers = append(closers, kp)
		publisher = kp

		if err := healthRegistry.Register(kp); err != nil {
			return fmt.Errorf("registering publisher health check: %w", err)
		}
	}

	flags := features.NewStatic(cfg.Features)

	// 9. Application layer
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Repo:            repo,
		Catalog:         catalog,
		Publisher:       publisher,
		Flags:           flags,
		Metrics:         quoteMetrics,
		Renderer:        pdf.NewRenderer(cfg.Documents),
		Logger:          logger,
		DefaultPageSize: cfg.Quotes.DefaultPageSize,
		MaxPageSize:     cfg.Quotes.MaxPageSize,
	})

	// 10. Handlers
	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, handlers.WithGatherer(registry))
	quoteHandler := handlers.NewQuoteHandler(quoteService, app.EditorConfig{
		Catalog: catalog,
		Flags:   flags,
		Metrics: quoteMetrics,
		Logger:  logger,
	})

	// 11. HTTP server and router
	server := http.New(&cfg.Server, logger)

	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, healthHandler, quoteHandler)
	routerCfg.Timeout = cfg.Server.RequestTimeout
	http.SetupRouter(server.Engine(), routerCfg)

	// 12. Start server (non-blocking)
	serverErr := server.Start()

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

func newRepository(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	health ports.HealthRegistry,
	closers *[]io.Closer,
) (ports.QuoteRepository, error) {
	if cfg.Database.Driver == config.DriverMemory {
		repo := memory.NewQuoteRepository()
		if err := health.Register(repo); err != nil {
			return nil, fmt.Errorf("registering store health check: %w", err)
		}

		logger.Warn("using the in-memory quote store; quotes are lost on restart")

		return repo, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to quote store: %w", err)
	}

	*closers = append(*closers, db)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrating quote store: %w", err)
		}
	}

	if err := health.Register(postgres.NewHealthChecker(db)); err != nil {
		return nil, fmt.Errorf("registering store health check: %w", err)
	}

	return postgres.NewQuoteRepository(db, postgres.Options{
		OpTimeout: cfg.Database.OpTimeout,
		Logger:    logger,
	}), nil
}

func newCatalog(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	quoteMetrics *metrics.Quotes,
	health ports.HealthRegistry,
	closers *[]io.Closer,
) (ports.Catalog, error) {
	var catalog ports.Catalog

	catalogCfg := cfg.Services.Catalog
	if catalogCfg.SeedFile != "" {
		seeded, err := memory.LoadCatalog(catalogCfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("loading catalog seed: %w", err)
		}

		catalog = seeded
	} else {
		client, err := clients.New(clients.Config{
			BaseURL:     catalogCfg.BaseURL,
			ServiceName: catalogCfg.Name,
			Timeout:     cfg.Client.Timeout,
			Retry:       cfg.Client.Retry,
			Circuit:     cfg.Client.CircuitBreaker,
			Transport:   cfg.Client.Transport,
			AuthFunc:    acl.APIKeyAuth(catalogCfg.APIKey),
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating catalog client: %w", err)
		}

		if err := health.Register(client); err != nil {
			return nil, fmt.Errorf("registering catalog health check: %w", err)
		}

		catalog = acl.NewCatalogClient(client, catalogCfg.Name)
	}

	if !cfg.Cache.Enabled {
		return catalog, nil
	}

	cache, err := redis.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("connecting to catalog cache: %w", err)
	}

	*closers = append(*closers, cache)

	if err := health.Register(cache); err != nil {
		return nil, fmt.Errorf("registering cache health check: %w", err)
	}

	return app.NewCachedCatalog(app.CachedCatalogConfig{
		Catalog: catalog,
		Cache:   cache,
		TTL:     cfg.Cache.TTL,
		Metrics: quoteMetrics,
		Logger:  logger,
	}), nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
