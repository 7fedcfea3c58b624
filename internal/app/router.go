package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/internal/platform/httpx"
	recordshttp "github.com/finboard/finboard/internal/records/http"
	reportshttp "github.com/finboard/finboard/internal/reports/http"
	"github.com/finboard/finboard/jobs"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	ReportsHandler *reportshttp.Handler
	RecordsHandler *recordshttp.Handler
	JobHandler     *jobs.Handler
	Store          Pinger
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.Store.PingContext(ctx); err != nil {
				params.Logger.Warn("store health check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if params.ReportsHandler != nil {
		params.ReportsHandler.MountRoutes(r)
	}
	if params.RecordsHandler != nil {
		params.RecordsHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		params.JobHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
