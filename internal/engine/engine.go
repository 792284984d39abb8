// Package engine runs the search cycle: it builds the count and page queries
// for a session state, sends them to the configured adapter and assembles the
// view a presentation renders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/pkg/adapter"
	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
	"github.com/leapstack-labs/bookfeed/pkg/query"
)

// DefaultQueryTimeout bounds a single query when none is configured.
const DefaultQueryTimeout = 30 * time.Second

// Engine executes feed queries against one adapter.
// It is safe for concurrent use once constructed.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	dialect *dialect.Dialect
	table   string
	timeout time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// AdapterConfig selects and configures the adapter.
	AdapterConfig adapter.Config
	// Table is the fully qualified feed table.
	Table string
	// QueryTimeout bounds each query (DefaultQueryTimeout when zero).
	QueryTimeout time.Duration
	// Metrics is optional.
	Metrics *Metrics
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine with a lazy connection.
// The adapter is connected on the first query or an explicit Connect.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.AdapterConfig.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	db, err := adapter.NewAdapter(cfg.AdapterConfig, logger)
	if err != nil {
		return nil, err
	}

	e := newEngine(db, cfg, logger)
	e.dbConfig = cfg.AdapterConfig
	return e, nil
}

// NewWithAdapter wraps an adapter that is already connected.
func NewWithAdapter(db adapter.Adapter, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := newEngine(db, cfg, logger)
	e.dbConnected = true
	return e
}

func newEngine(db adapter.Adapter, cfg Config, logger *slog.Logger) *Engine {
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	table := cfg.Table
	if table == "" {
		table = core.DefaultTable
	}
	return &Engine{
		db:      db,
		dialect: db.Dialect(),
		table:   table,
		timeout: timeout,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Connect connects the adapter if it is not connected yet.
func (e *Engine) Connect(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to query engine", "adapter_type", e.dbConfig.Type, "table", e.table)

	if err := e.db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", e.dbConfig.Type, err)
	}
	e.dbConnected = true
	return nil
}

// Close releases the adapter.
func (e *Engine) Close() error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if !e.dbConnected {
		return nil
	}
	e.dbConnected = false
	return e.db.Close()
}

// Ping connects if needed and checks the engine is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.Connect(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.db.Ping(ctx)
}

// Dialect returns the dialect queries are built with.
func (e *Engine) Dialect() *dialect.Dialect {
	return e.dialect
}

// Table returns the feed table the engine queries.
func (e *Engine) Table() string {
	return e.table
}

// Adapter returns the underlying adapter.
func (e *Engine) Adapter() adapter.Adapter {
	return e.db
}

// Plan builds the queries for a state without running them.
func (e *Engine) Plan(s session.State) query.Specs {
	return Plan(e.dialect, e.table, s)
}

// Plan builds the queries for a state against the given dialect and table.
func Plan(d *dialect.Dialect, table string, s session.State) query.Specs {
	return query.Build(d, table, query.Input{
		Term:       s.Term,
		Categories: s.Categories,
		Page:       s.Page,
	})
}

// Count runs a count query. Failures are logged and returned in the Result.
func (e *Engine) Count(ctx context.Context, spec core.QuerySpec) Result[int64] {
	total, err := run(ctx, e, kindCount, spec, e.db.QueryCount)
	if err != nil {
		return fail[int64](err)
	}
	return ok(total)
}

// Rows runs a data query. Failures are logged and returned in the Result.
func (e *Engine) Rows(ctx context.Context, spec core.QuerySpec) Result[[]core.ResultRow] {
	rows, err := run(ctx, e, kindRows, spec, e.db.QueryRows)
	if err != nil {
		return fail[[]core.ResultRow](err)
	}
	return ok(rows)
}

// run executes one query attempt under the configured timeout.
func run[T any](ctx context.Context, e *Engine, kind string, spec core.QuerySpec,
	fn func(context.Context, core.QuerySpec) (T, error)) (T, error) {
	var zero T
	if err := e.Connect(ctx); err != nil {
		e.logger.Error("query engine unavailable", "kind", kind, "error", err)
		e.metrics.observe(kind, 0, err)
		return zero, err
	}

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	v, err := fn(qctx, spec)
	elapsed := time.Since(start)
	e.metrics.observe(kind, elapsed, err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(qctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%s query timed out after %s: %w", kind, e.timeout, err)
		}
		e.logger.Error("query failed", "kind", kind, "duration", elapsed, "error", err)
		return zero, err
	}

	e.logger.Debug("query finished", "kind", kind, "duration", elapsed, "params", len(spec.Params))
	return v, nil
}

// Evaluate runs one search cycle for s and returns the view to render.
// The count query runs first; when it fails the page query is not sent and
// the view reports zero results on a single page. The returned view's state
// has its filter committed.
func (e *Engine) Evaluate(ctx context.Context, s session.State) View {
	s = s.Normalize()
	specs := e.Plan(s)
	view := View{State: s.Commit()}

	count := e.Count(ctx, specs.Count)
	if !count.OK() {
		view.Page = core.NewPageInfo(0, s.Page)
		view.Err = count.Err
		return view
	}
	view.Page = core.NewPageInfo(count.Value, s.Page)

	rows := e.Rows(ctx, specs.Data)
	if !rows.OK() {
		view.Err = rows.Err
		return view
	}
	view.Rows = rows.Value
	return view
}
