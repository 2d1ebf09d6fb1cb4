package httptransport

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/R3gret/TinyBackend-sub000/internal/platform/metrics"
	"github.com/R3gret/TinyBackend-sub000/internal/platform/middleware"
	platformredis "github.com/R3gret/TinyBackend-sub000/internal/platform/redis"
)

// Registrar is implemented by feature handlers that mount their routes.
type Registrar interface {
	Register(r chi.Router)
}

// RegistrarFunc adapts a bare mount function to the Registrar interface.
type RegistrarFunc func(chi.Router)

func (f RegistrarFunc) Register(r chi.Router) { f(r) }

// Deps carries everything the router needs from main.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	// Public handlers mount before authentication (login only).
	Public []Registrar
	// Protected handlers mount behind the bearer token check.
	Protected []Registrar

	// Optional backends probed by the readiness endpoint.
	DB    *sql.DB
	Redis *platformredis.Client
}

// NewRouter wires middleware, observability endpoints, and every feature
// handler into one chi router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Tracing)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		for _, h := range deps.Public {
			h.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		for _, h := range deps.Protected {
			h.Register(r)
		}
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz reports not-ready while any configured backend is down so a
// load balancer stops routing before requests start failing.
func handleReadyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := probeBackends(ctx, deps); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		handleHealthz(w, r)
	}
}

func probeBackends(ctx context.Context, deps Deps) error {
	if deps.DB != nil {
		if err := deps.DB.PingContext(ctx); err != nil {
			return err
		}
	}
	if deps.Redis != nil {
		if err := deps.Redis.Health(ctx); err != nil {
			return err
		}
	}
	return nil
}
