package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/internal/testutil"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
	"github.com/leapstack-labs/bookfeed/pkg/core"

	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/duckdb"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	path := testutil.NewFeedDB(t, testutil.SampleBooks()...)
	eng, err := engine.New(engine.Config{
		AdapterConfig: core.AdapterConfig{Type: "duckdb", Path: path},
		Table:         testutil.FeedTable,
		Metrics:       engine.NewMetrics(reg),
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	cfg.Backend = eng
	cfg.Gatherer = reg
	cfg.SessionSecret = "test-secret-key-32-bytes-long!!"
	if cfg.Catalog == nil {
		cfg.Catalog = core.DefaultCategories
	}
	cfg.Logger = testutil.NewTestLogger(t)
	return NewServer(cfg)
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHandler_Routes(t *testing.T) {
	h := newTestServer(t, Config{}).Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"page", http.MethodGet, "/", http.StatusOK, "Audiobook Feed"},
		{"healthz", http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{"stylesheet", http.MethodGet, "/static/app.css", http.StatusOK, "table.results"},
		{"unknown", http.MethodGet, "/nope", http.StatusNotFound, ""},
		{"wrong method", http.MethodGet, "/api/page/next", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_MetricsAfterSearch(t *testing.T) {
	h := newTestServer(t, Config{}).Handler()

	require.Equal(t, http.StatusOK, get(t, h, http.MethodGet, "/").Code)

	rec := get(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bookfeed_queries_total{kind="count",outcome="ok"} 1`)
	assert.Contains(t, body, `bookfeed_queries_total{kind="rows",outcome="ok"} 1`)
	assert.Contains(t, body, "bookfeed_query_duration_seconds_bucket")
}

type downBackend struct{}

func (downBackend) Evaluate(_ context.Context, s session.State) engine.View {
	return engine.View{State: s}
}

func (downBackend) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz_Unavailable(t *testing.T) {
	s := NewServer(Config{Backend: downBackend{}, SessionSecret: "x"})

	rec := get(t, s.Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = get(t, s.Handler(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics disabled without a gatherer")
}

func TestReloadCatalog(t *testing.T) {
	var next []string
	var loadErr error
	s := newTestServer(t, Config{
		ConfigFile:  "bookfeed.yaml",
		LoadCatalog: func(string) ([]string, error) { return next, loadErr },
	})
	ch := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(ch)

	next = []string{"Horror"}
	s.reloadCatalog()
	assert.Equal(t, session.Catalog{"Horror"}, s.Catalog())
	assert.Equal(t, notifier.CatalogChanged, <-ch)

	// Unchanged catalog does not notify.
	s.reloadCatalog()
	assert.Empty(t, ch)

	// A broken file keeps the previous catalog.
	loadErr = errors.New("bad yaml")
	next = nil
	s.reloadCatalog()
	assert.Equal(t, session.Catalog{"Horror"}, s.Catalog())
	assert.Empty(t, ch)
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bookfeed.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("categories: Fiction\n"), 0o600))

	loader := func(path string) ([]string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		_, list, _ := strings.Cut(strings.TrimSpace(string(data)), ": ")
		return strings.Split(list, ","), nil
	}
	s := newTestServer(t, Config{Watch: true, ConfigFile: cfgPath, LoadCatalog: loader})
	require.True(t, s.watch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchConfig(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	assert.Eventually(t, func() bool {
		// Rewrite until the watcher is registered and picks it up.
		_ = os.WriteFile(cfgPath, []byte("categories: Horror,Poetry\n"), 0o600)
		return s.Catalog().Contains("Poetry")
	}, 3*time.Second, 150*time.Millisecond)
	assert.Equal(t, session.Catalog{"Horror", "Poetry"}, s.Catalog())
}

func TestNewServer_WatchNeedsLoader(t *testing.T) {
	s := NewServer(Config{Watch: true, ConfigFile: "bookfeed.yaml"})
	assert.False(t, s.watch)
}
