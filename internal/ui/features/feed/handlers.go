package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/internal/ui/catalog"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
)

// Evaluator runs one search cycle.
type Evaluator interface {
	Evaluate(ctx context.Context, s session.State) engine.View
}

// Handlers provides HTTP handlers for the feed search page.
type Handlers struct {
	engine       Evaluator
	catalog      *catalog.Store
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eval Evaluator, cat *catalog.Store, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		engine:       eval,
		catalog:      cat,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
	}
}

// Page renders the full page with the results of the stored state.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	bs := h.loadSession(r)
	view := h.cycle(r.Context(), bs, nil)
	if err := bs.save(w, r); err != nil {
		h.logger.Error("failed to save session", "session", bs.id, "error", err)
	}

	page := PageData{
		Title:       "Search",
		DatastarURL: DatastarURL,
		Signals:     signalsJSON(view.State),
		App:         NewAppData(h.catalog.Get(), view),
	}
	if err := Page(page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SearchSSE re-runs the stored search and resyncs the client's signals. The
// page calls it when restored from the back/forward cache, since another tab
// may have moved the shared session since it was rendered.
func (h *Handlers) SearchSSE(w http.ResponseWriter, r *http.Request) {
	bs := h.loadSession(r)
	view := h.cycle(r.Context(), bs, nil)
	if err := bs.save(w, r); err != nil {
		h.logger.Error("failed to save session", "session", bs.id, "error", err)
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(searchSignals{Term: view.State.Term, Categories: view.State.Categories}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	h.patchApp(sse, view)
}

// Search applies the posted term and categories.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var signals searchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cat := h.catalog.Get()
	h.respond(w, r, func(s session.State) session.State {
		return s.WithFilter(signals.Term, signals.Categories, cat)
	})
}

// NextPage advances one page.
func (h *Handlers) NextPage(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, session.State.Next)
}

// PrevPage goes back one page.
func (h *Handlers) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, session.State.Prev)
}

// ToggleRow selects or deselects the row at the {index} path parameter.
func (h *Handlers) ToggleRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid row index", http.StatusBadRequest)
		return
	}
	h.respond(w, r, func(s session.State) session.State {
		return s.ToggleRow(index)
	})
}

// Events is the long-lived stream that re-renders the filter bar when the
// catalog is reloaded.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	bs := h.loadSession(r)
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if ev != notifier.CatalogChanged {
				continue
			}
			h.logger.Debug("pushing catalog update", "session", bs.id)
			if err := sse.PatchElementTempl(Filters(NewFilterData(h.catalog.Get(), bs.state))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// respond applies a transition, evaluates, stores the result and patches the
// results region.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, transition func(session.State) session.State) {
	bs := h.loadSession(r)
	view := h.cycle(r.Context(), bs, transition)
	if err := bs.save(w, r); err != nil {
		h.logger.Error("failed to save session", "session", bs.id, "error", err)
	}

	sse := datastar.NewSSE(w, r)
	h.patchApp(sse, view)
}

func (h *Handlers) cycle(ctx context.Context, bs *browserSession, transition func(session.State) session.State) engine.View {
	if transition != nil {
		bs.state = transition(bs.state)
	}
	view := h.engine.Evaluate(ctx, bs.state)
	bs.state = view.State

	attrs := []any{
		"session", bs.id,
		"page", view.State.Page,
		"total", view.Page.TotalResults,
	}
	if view.Err != nil {
		h.logger.Warn("search failed", append(attrs, "error", view.Err)...)
	} else {
		h.logger.Debug("search", attrs...)
	}
	return view
}

func (h *Handlers) patchApp(sse *datastar.ServerSentEventGenerator, view engine.View) {
	if err := sse.PatchElementTempl(App(NewAppData(h.catalog.Get(), view))); err != nil {
		_ = sse.ConsoleError(err)
	}
}
