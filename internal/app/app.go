package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/marketplace-discovery/internal/behavior"
	"github.com/utafrali/marketplace-discovery/internal/catalog"
	"github.com/utafrali/marketplace-discovery/internal/config"
	"github.com/utafrali/marketplace-discovery/internal/discovery"
	"github.com/utafrali/marketplace-discovery/internal/event"
	handler "github.com/utafrali/marketplace-discovery/internal/handler/http"
	"github.com/utafrali/marketplace-discovery/internal/rating"
	"github.com/utafrali/marketplace-discovery/internal/recommend"
	"github.com/utafrali/marketplace-discovery/internal/repository/postgres"
	"github.com/utafrali/marketplace-discovery/internal/service"
	"github.com/utafrali/marketplace-discovery/migrations"
	"github.com/utafrali/marketplace-discovery/pkg/database"
	"github.com/utafrali/marketplace-discovery/pkg/health"
	"github.com/utafrali/marketplace-discovery/pkg/httpclient"
	pkgkafka "github.com/utafrali/marketplace-discovery/pkg/kafka"
	"github.com/utafrali/marketplace-discovery/pkg/middleware"
	"github.com/utafrali/marketplace-discovery/pkg/tracing"
)

// App wires together all dependencies and runs the discovery service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	closers    []namedCloser
	httpServer *http.Server
	shutdownFn tracing.Shutdown
}

type namedCloser struct {
	name  string
	close func() error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	healthHandler := health.NewHandler()

	shutdownTracing, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownFn = shutdownTracing

	// PostgreSQL holds submitted ratings.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := prometheus.Register(database.NewPoolStatsCollector(pool, config.ServiceName)); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	healthHandler.Register("postgres", pool.Ping)

	// Behavior profiles.
	kv, err := newBehaviorKV(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if kv.check != nil {
		healthHandler.Register(cfg.BehaviorBackend, kv.check)
	}
	if kv.close != nil {
		a.closers = append(a.closers, namedCloser{name: cfg.BehaviorBackend, close: kv.close})
	}

	// Domain events.
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("domain events disabled")
	}

	// Upstream catalog behind retries and a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.CatalogTimeout()
	catalogHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	fetcher := catalog.NewClient(catalogHTTP, cfg.CatalogBaseURL, logger)

	// Build the dependency graph.
	store := behavior.NewStore(kv.kv, cfg.BehaviorKey, logger)
	engine := discovery.NewEngine(store, logger)
	discoveryService := service.NewDiscoveryService(fetcher, engine, recommend.NewSelector(), publisher, cfg.RelatedLimit, logger)

	repo := postgres.NewRatingRepository(pool, database.QueryTracer{
		SlowThreshold: cfg.SlowQueryThreshold(),
		Logger:        logger,
	})
	ratingService := service.NewRatingService(repo, rating.NewAggregator(logger), publisher, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: config.ServiceName,
		Discovery:   discoveryService,
		Ratings:     ratingService,
		Health:      healthHandler,
		CORS:        corsCfg,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
		RatingRPS:   cfg.RatingRateLimitRPS,
		RatingBurst: cfg.RatingRateLimitBurst,
		Logger:      logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. Every component is closed even
// when an earlier one fails; the errors are joined.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka producer: %w", err))
		}
	}
	for _, c := range a.closers {
		if err := c.close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.shutdownFn != nil {
		if err := a.shutdownFn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		a.logger.Error("application shutdown incomplete", slog.String("error", err.Error()))
		return err
	}
	a.logger.Info("application shutdown complete")
	return nil
}
