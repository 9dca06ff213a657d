package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tasks-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/metrics"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

const healthCheckTimeout = 2 * time.Second

// routerDeps are the collaborators the HTTP layer needs. Tests build one
// from mocks; newApplication builds one from real infrastructure.
type routerDeps struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tokens        auth.TokenService
	revocations   auth.RevocationStore
	users         store.UserStore
	tasks         store.TaskStore
	transactor    store.Transactor
	verifier      auth.PasswordVerifier
	mail          api.MailQueue
	tokenLifetime time.Duration
	trustProxy    bool

	// health reports whether backing services are reachable. Nil means
	// always healthy.
	health func(ctx context.Context) error
}

// newRouter creates the application router with all routes and middleware.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	correlator := apiMiddleware.NewCorrelator(deps.logger, deps.metrics)
	gate := apiMiddleware.NewGate(deps.tokens, deps.revocations, deps.users, deps.metrics)

	if deps.trustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(correlator.Middleware)
	r.Use(apiMiddleware.Recoverer)

	authHandler := api.NewAuthHandler(
		deps.users,
		deps.tokens,
		deps.revocations,
		deps.verifier,
		deps.mail,
		deps.tokenLifetime,
	)
	userHandler := api.NewUserHandler(deps.users, deps.tasks, deps.transactor)
	taskHandler := api.NewTaskHandler(deps.tasks)

	readonly := gate.Guard(domain.RoleReadOnly)
	editor := gate.Guard(domain.RoleEditor)
	admin := gate.Guard(domain.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.With(readonly).Post("/auth/logout", authHandler.Logout)

		r.Route("/users", func(r chi.Router) {
			r.With(readonly).Get("/me", userHandler.Me)
			r.With(admin).Get("/", userHandler.List)
			r.With(admin).Patch("/{id}/role", userHandler.UpdateRole)
			r.With(admin).Delete("/{id}", userHandler.Delete)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(readonly).Get("/", taskHandler.List)
			r.With(readonly).Get("/{id}", taskHandler.Get)
			r.With(editor).Post("/", taskHandler.Create)
			r.With(editor).Put("/{id}", taskHandler.Update)
			r.With(admin).Delete("/{id}", taskHandler.Delete)
		})
	})

	r.Get("/health", healthHandler(deps.health))
	r.Handle("/metrics", deps.metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.FromContext(r.Context()).Error("health check failed",
					slog.String("error", redact.Error(err)))
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
