// Package feed is the audiobook feed search page.
package feed

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/bookfeed/internal/ui/catalog"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
)

// SetupRoutes registers the search page and its SSE endpoints.
func SetupRoutes(
	router chi.Router,
	eval Evaluator,
	cat *catalog.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) {
	h := NewHandlers(eval, cat, sessionStore, notify, logger)

	router.Get("/", h.Page)
	router.Get("/search/sse", h.SearchSSE)
	router.Get("/events", h.Events)

	router.Route("/api", func(r chi.Router) {
		r.Post("/search", h.Search)
		r.Post("/page/next", h.NextPage)
		r.Post("/page/prev", h.PrevPage)
		r.Post("/rows/{index}/toggle", h.ToggleRow)
	})
}
