// Package router sets up HTTP routes for the UI server.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leapstack-labs/bookfeed/internal/ui/catalog"
	feedFeature "github.com/leapstack-labs/bookfeed/internal/ui/features/feed"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
	"github.com/leapstack-labs/bookfeed/internal/ui/resources"
)

// Backend is what the routes need from the query engine.
type Backend interface {
	feedFeature.Evaluator
	Ping(ctx context.Context) error
}

// Deps groups the shared state handed to every feature.
type Deps struct {
	Backend      Backend
	Catalog      *catalog.Store
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) {
	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", healthz(deps.Backend))
	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	feedFeature.SetupRoutes(router, deps.Backend, deps.Catalog, deps.SessionStore, deps.Notifier, deps.Logger)
}

// healthz reports whether the backend answers a ping within five seconds.
func healthz(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := b.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable: " + err.Error() + "\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	}
}
