package feed

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/internal/testutil"
	"github.com/leapstack-labs/bookfeed/internal/ui/features"
	"github.com/leapstack-labs/bookfeed/internal/ui/notifier"
	"github.com/leapstack-labs/bookfeed/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupRouter(t *testing.T) (chi.Router, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, testutil.SampleBooks()...)
	r := chi.NewRouter()
	SetupRoutes(r, fixture.Engine, fixture.Catalog, fixture.SessionStore, fixture.Notifier, testutil.NewTestLogger(t))
	return r, fixture
}

// browser replays the session cookie across requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (b *browser) do(method, path, body string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return rec
}

type fakeEvaluator struct {
	err   error
	calls []session.State
}

func (f *fakeEvaluator) Evaluate(_ context.Context, s session.State) engine.View {
	f.calls = append(f.calls, s)
	return engine.View{State: s.Commit(), Page: core.NewPageInfo(0, s.Page), Err: f.err}
}

// =============================================================================
// Page
// =============================================================================

func TestPage(t *testing.T) {
	r, _ := setupRouter(t)
	b := &browser{t: t, handler: r}

	rec := b.do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Search - bookfeed</title>",
		"/static/app.css",
		DatastarURL,
		"@get('/events')",
		"evt.persisted && @get('/search/sse')",
		`id="filters"`,
		`value="Sci-Fi"`,
		`id="app"`,
		"Dune",
		"Hyperion",
		"Page 1 of 1 | Total Results: 4",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `id="detail"`)
	assert.NotEmpty(t, b.cookies, "session cookie is set")
}

// =============================================================================
// Search cycle
// =============================================================================

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		signals   string
		want      []string
		notWanted []string
	}{
		{
			name:      "term matches title and uploader",
			signals:   `{"term":"dune","categories":[]}`,
			want:      []string{"Dune", "Hyperion", "Total Results: 2"},
			notWanted: []string{"Gone Girl", "Sapiens"},
		},
		{
			name:      "category filter",
			signals:   `{"term":"","categories":["Mystery"]}`,
			want:      []string{"Gone Girl", "Total Results: 1"},
			notWanted: []string{"Hyperion"},
		},
		{
			name:    "categories as checkbox map",
			signals: `{"term":"","categories":{"Sci-Fi":true,"Mystery":false}}`,
			want:    []string{"Dune", "Hyperion", "Total Results: 2"},
		},
		{
			name:    "no match",
			signals: `{"term":"zzz"}`,
			want:    []string{engine.NoResultsMessage, "Page 1 of 1 | Total Results: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setupRouter(t)
			b := &browser{t: t, handler: r}

			rec := b.do(http.MethodPost, "/api/search", tt.signals)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
			body := rec.Body.String()
			assert.Contains(t, body, "datastar-patch-elements")
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
			for _, nw := range tt.notWanted {
				assert.NotContains(t, body, nw)
			}
		})
	}
}

func TestSearch_BadSignals(t *testing.T) {
	r, _ := setupRouter(t)
	b := &browser{t: t, handler: r}

	rec := b.do(http.MethodPost, "/api/search", `{"term":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	r, _ := setupRouter(t)
	b := &browser{t: t, handler: r}

	rec := b.do(http.MethodPost, "/api/search", `{"term":"dune","categories":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Selecting the first row opens the detail panel with a sanitized summary.
	rec = b.do(http.MethodPost, "/api/rows/0/toggle", "")
	body := rec.Body.String()
	assert.Contains(t, body, `id="detail"`)
	assert.Contains(t, body, "Spice and <b>sand</b>.")
	assert.Contains(t, body, "https://example.com/dune")
	assert.Contains(t, body, "2024-03-01")
	assert.Contains(t, body, `class="selected"`)

	// Toggling again closes it.
	rec = b.do(http.MethodPost, "/api/rows/0/toggle", "")
	assert.NotContains(t, rec.Body.String(), `id="detail"`)

	// Next has no upper bound; page two of the filtered results is empty.
	rec = b.do(http.MethodPost, "/api/page/next", "")
	body = rec.Body.String()
	assert.Contains(t, body, "Page 2 of 1 | Total Results: 2")
	assert.Contains(t, body, engine.NoResultsMessage)

	rec = b.do(http.MethodPost, "/api/page/prev", "")
	assert.Contains(t, rec.Body.String(), "Page 1 of 1 | Total Results: 2")

	// Prev on the first page stays there.
	rec = b.do(http.MethodPost, "/api/page/prev", "")
	assert.Contains(t, rec.Body.String(), "Page 1 of 1 | Total Results: 2")

	// The stored filter survives a reload of the page.
	rec = b.do(http.MethodGet, "/", "")
	body = rec.Body.String()
	assert.Contains(t, body, "Hyperion")
	assert.NotContains(t, body, "Gone Girl")
	assert.Contains(t, body, `&#34;term&#34;:&#34;dune&#34;`)
}

func TestSearch_ChangedFilterResetsPage(t *testing.T) {
	r, _ := setupRouter(t)
	b := &browser{t: t, handler: r}

	b.do(http.MethodPost, "/api/page/next", "")
	rec := b.do(http.MethodPost, "/api/page/next", "")
	assert.Contains(t, rec.Body.String(), "Page 3 of 1")

	rec = b.do(http.MethodPost, "/api/search", `{"term":"sapiens","categories":[]}`)
	assert.Contains(t, rec.Body.String(), "Page 1 of 1 | Total Results: 1")

	// Same filter again keeps the page.
	b.do(http.MethodPost, "/api/page/next", "")
	rec = b.do(http.MethodPost, "/api/search", `{"term":"sapiens","categories":[]}`)
	assert.Contains(t, rec.Body.String(), "Page 2 of 1")
}

func TestSearchSSE(t *testing.T) {
	r, _ := setupRouter(t)
	b := &browser{t: t, handler: r}

	b.do(http.MethodPost, "/api/search", `{"term":"","categories":["mystery"]}`)
	rec := b.do(http.MethodGet, "/search/sse", "")

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, `"categories":["Mystery"]`)
	assert.Contains(t, body, "Gone Girl")
}

func TestToggleRow_InvalidIndex(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := NewHandlers(fixture.Engine, fixture.Catalog, fixture.SessionStore, fixture.Notifier, nil)

	for _, index := range []string{"x", "-1"} {
		req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/api/rows/"+index+"/toggle", nil), "index", index)
		rec := httptest.NewRecorder()
		h.ToggleRow(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, index)
	}
}

func TestSearch_FailureIsRendered(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	eval := &fakeEvaluator{err: errors.New("count query failed: boom")}
	r := chi.NewRouter()
	SetupRoutes(r, eval, fixture.Catalog, fixture.SessionStore, fixture.Notifier, nil)
	b := &browser{t: t, handler: r}

	rec := b.do(http.MethodPost, "/api/search", `{"term":"dune","categories":["Bogus","Fiction"]}`)

	body := rec.Body.String()
	assert.Contains(t, body, "Search failed: count query failed: boom")
	assert.Contains(t, body, engine.NoResultsMessage)
	require.Len(t, eval.calls, 1)
	assert.Equal(t, []string{"Fiction"}, eval.calls[0].Categories, "unknown categories are dropped")
}

func TestSearch_CheckboxMapKeepsSelectionOrder(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	eval := &fakeEvaluator{}
	r := chi.NewRouter()
	SetupRoutes(r, eval, fixture.Catalog, fixture.SessionStore, fixture.Notifier, nil)
	b := &browser{t: t, handler: r}

	b.do(http.MethodPost, "/api/search", `{"term":"","categories":{"Sci-Fi":true,"Romance":false,"Fiction":true}}`)

	require.Len(t, eval.calls, 1)
	assert.Equal(t, []string{"Sci-Fi", "Fiction"}, eval.calls[0].Categories)
}

// =============================================================================
// Events
// =============================================================================

func TestEvents_CatalogChange(t *testing.T) {
	r, fixture := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)

	lines := make(chan string)
	go func() {
		resp, err := srv.Client().Do(req)
		if err != nil {
			return
		}
		defer func() { _ = resp.Body.Close() }()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	fixture.Catalog.Set(session.Catalog{"Horror"})
	fixture.Notifier.Broadcast(notifier.CatalogChanged)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-lines:
			if strings.Contains(line, `value="Horror"`) {
				return
			}
		case <-deadline:
			t.Fatal("no filter bar update received")
		}
	}
}

// =============================================================================
// Rendering helpers
// =============================================================================

func TestSummaryHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  ", ""},
		{"plain text is escaped", "Tom & Jerry <3", "<p>Tom &amp; Jerry &lt;3</p>"},
		{"paragraphs and line breaks", "one\ntwo\n\nthree", "<p>one<br>two</p><p>three</p>"},
		{"html is sanitized", `<p onclick="x()">Hi</p><script>alert(1)</script>`, "<p>Hi</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(summaryHTML(tt.in)))
		})
	}
}

func TestCategorySignal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"array", `["Fiction","Sci-Fi"]`, []string{"Fiction", "Sci-Fi"}, false},
		{"set keeps document order", `{"Sci-Fi":true,"Mystery":false,"Fiction":true}`, []string{"Sci-Fi", "Fiction"}, false},
		{"empty set", `{}`, []string{}, false},
		{"set with non-bool value", `{"Fiction":"yes"}`, nil, true},
		{"single value", `"Fiction"`, []string{"Fiction"}, false},
		{"empty string", `""`, nil, false},
		{"number", `3`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c categorySignal
			err := c.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, []string(c))
		})
	}
}

func TestNewAppData(t *testing.T) {
	view := engine.View{
		State: session.State{Page: 2, Selected: 1, Categories: []string{"Fiction"}},
		Page:  core.NewPageInfo(12, 2),
		Rows: []core.ResultRow{
			{Title: "A"},
			{Title: "B", Summary: "plain", Link: "https://example.com/b"},
		},
	}

	d := NewAppData(session.Catalog{"Fiction", "Mystery"}, view)

	assert.True(t, d.HasPrev)
	assert.Equal(t, "Page 2 of 2 | Total Results: 12", d.Indicator)
	assert.Empty(t, d.Message)
	require.Len(t, d.Rows, 2)
	assert.False(t, d.Rows[0].Selected)
	assert.True(t, d.Rows[1].Selected)
	require.NotNil(t, d.Detail)
	assert.Equal(t, "B", d.Detail.Title)
	assert.Equal(t, []CategoryOption{{Name: "Fiction", Checked: true}, {Name: "Mystery"}}, d.Filters.Options)
}
