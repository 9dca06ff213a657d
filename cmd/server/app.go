package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/metrics"
	"github.com/phrazzld/tasks-api/internal/notify"
	"github.com/phrazzld/tasks-api/internal/platform/memory"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/redis"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// memoryCleanupInterval is how often the in-process revocation store purges
// expired entries.
const memoryCleanupInterval = time.Minute

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	metrics    *metrics.Metrics
	dispatcher *notify.Dispatcher
	deps       routerDeps
}

// newApplication creates a new application instance with all dependencies
// initialized. The database connection must already be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	revocations, err := app.setupRevocationStore(ctx)
	if err != nil {
		return nil, err
	}

	app.dispatcher = notify.NewDispatcher(
		notify.NewLogMailer(cfg.Mail.From),
		notify.DispatcherConfig{WorkerCount: cfg.Mail.WorkerCount, QueueSize: cfg.Mail.QueueSize},
		logger,
	)
	app.dispatcher.SetRecorder(app.metrics)
	app.dispatcher.Start()

	app.deps = routerDeps{
		logger:        logger,
		metrics:       app.metrics,
		tokens:        tokens,
		revocations:   revocations,
		users:         postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost),
		tasks:         postgres.NewPostgresTaskStore(db),
		transactor:    store.NewDBTransactor(db),
		verifier:      auth.NewBcryptVerifier(),
		mail:          app.dispatcher,
		tokenLifetime: cfg.Auth.TokenLifetime(),
		trustProxy:    cfg.Server.TrustProxyHeaders,
		health:        app.checkHealth,
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupRevocationStore connects to Redis when an address is configured and
// falls back to the in-process store otherwise.
func (app *application) setupRevocationStore(ctx context.Context) (auth.RevocationStore, error) {
	if app.config.Redis.Addr == "" {
		app.logger.Warn("redis not configured, using in-process revocation store; revocations are not shared between instances")
		return memory.NewRevocationStore(memoryCleanupInterval), nil
	}

	client, err := redis.Open(ctx, app.config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client
	app.logger.Info("redis revocation store connected", "addr", app.config.Redis.Addr)
	return redis.NewRevocationStore(client), nil
}

// checkHealth pings the database and, when configured, Redis.
func (app *application) checkHealth(ctx context.Context) error {
	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := newRouter(app.deps)

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Handler exposes the configured router, mainly for tests.
func (app *application) Handler() http.Handler {
	return newRouter(app.deps)
}

// cleanup drains the mail queue and closes external connections.
func (app *application) cleanup(ctx context.Context) {
	if app.dispatcher != nil {
		if err := app.dispatcher.Stop(ctx); err != nil {
			app.logger.Error("mail dispatcher did not drain", "error", err)
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
