// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/testutil"
	"github.com/leapstack-labs/bookfeed/internal/ui/catalog"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
	"github.com/leapstack-labs/bookfeed/pkg/core"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/duckdb"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Engine       *engine.Engine
	Catalog      *catalog.Store
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates an engine over a DuckDB feed seeded with books.
func SetupTestFixture(t *testing.T, books ...testutil.Book) *TestFixture {
	t.Helper()

	path := testutil.NewFeedDB(t, books...)
	eng, err := engine.New(engine.Config{
		AdapterConfig: core.AdapterConfig{Type: "duckdb", Path: path},
		Table:         testutil.FeedTable,
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = eng.Close()
	})

	return &TestFixture{
		Engine:       eng,
		Catalog:      catalog.NewStore(core.DefaultCategories),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
