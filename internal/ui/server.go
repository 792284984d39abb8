// Package ui provides the bookfeed web search page.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/internal/ui/catalog"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
	"github.com/leapstack-labs/bookfeed/internal/ui/router"
)

const reloadDebounce = 100 * time.Millisecond

// CatalogLoader reads the category catalog from a config file.
type CatalogLoader func(path string) ([]string, error)

// Server is the web UI server.
type Server struct {
	backend      router.Backend
	catalog      *catalog.Store
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	gatherer     prometheus.Gatherer
	port         int
	watch        bool
	configFile   string
	loadCatalog  CatalogLoader
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Backend       router.Backend
	Catalog       session.Catalog
	Port          int
	SessionSecret string
	// Watch reloads the catalog from ConfigFile when it changes.
	Watch       bool
	ConfigFile  string
	LoadCatalog CatalogLoader
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		backend:      cfg.Backend,
		catalog:      catalog.NewStore(cfg.Catalog),
		sessionStore: sessionStore,
		notifier:     notifier.New(),
		gatherer:     cfg.Gatherer,
		port:         cfg.Port,
		watch:        cfg.Watch && cfg.ConfigFile != "" && cfg.LoadCatalog != nil,
		configFile:   cfg.ConfigFile,
		loadCatalog:  cfg.LoadCatalog,
		logger:       logger,
	}
}

// Handler builds the router with middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	router.SetupRoutes(r, router.Deps{
		Backend:      s.backend,
		Catalog:      s.catalog,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Gatherer:     s.gatherer,
		Logger:       s.logger,
	})
	return r
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Catalog returns the catalog currently offered to pages.
func (s *Server) Catalog() session.Catalog {
	return s.catalog.Get()
}

// watchConfig reloads the catalog when the config file changes.
// The parent directory is watched so editors that save by rename are seen.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.configFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch config directory", "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, s.reloadCatalog)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reloadCatalog re-reads the catalog and notifies open pages when it changed.
// A config that fails to load keeps the previous catalog.
func (s *Server) reloadCatalog() {
	cats, err := s.loadCatalog(s.configFile)
	if err != nil {
		s.logger.Warn("keeping previous categories", "file", s.configFile, "error", err)
		return
	}
	if !s.catalog.Set(cats) {
		return
	}
	s.logger.Info("categories reloaded", "file", s.configFile, "count", len(cats))
	s.notifier.Broadcast(notifier.CatalogChanged)
}
