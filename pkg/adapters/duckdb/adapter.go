// Package duckdb provides a DuckDB adapter for local or exported copies of the feed.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/bookfeed/pkg/adapter"
	duckdialect "github.com/leapstack-labs/bookfeed/pkg/adapters/duckdb/dialect"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Dialect returns the DuckDB dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return duckdialect.DuckDB
}

// Connect establishes a connection to DuckDB and applies the target params.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("opening duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.applyParams(ctx, params); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}
	return nil
}

// applyParams loads extensions, then settings, then secrets, then views.
// Views come last since their sources may need the secrets.
func (a *Adapter) applyParams(ctx context.Context, p *Params) error {
	for _, ext := range p.Extensions {
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if err := a.exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	for _, key := range sortedKeys(p.Settings) {
		if err := a.exec(ctx, fmt.Sprintf("SET %s = %s", key, quoteLiteral(p.Settings[key]))); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", key, err)
		}
	}

	for i, secret := range p.Secrets {
		if err := a.exec(ctx, buildCreateSecretSQL(secret)); err != nil {
			return fmt.Errorf("failed to create secret %d (%s): %w", i, secret.Type, err)
		}
	}

	for _, name := range sortedKeys(p.Views) {
		a.Logger.Debug("mounting duckdb view", slog.String("view", name), slog.String("source", p.Views[name]))
		if err := a.exec(ctx, buildCreateViewSQL(name, p.Views[name])); err != nil {
			return fmt.Errorf("failed to mount view %s: %w", name, err)
		}
	}
	return nil
}

func (a *Adapter) exec(ctx context.Context, stmt string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	_, err := a.DB.ExecContext(ctx, stmt)
	return err
}

// buildCreateSecretSQL renders a temporary CREATE SECRET statement.
func buildCreateSecretSQL(s SecretConfig) string {
	opts := []string{"TYPE " + s.Type}
	if s.Provider != "" {
		opts = append(opts, "PROVIDER "+s.Provider)
	}
	if s.Region != "" {
		opts = append(opts, "REGION "+quoteLiteral(s.Region))
	}
	if scope := formatScope(s.Scope); scope != "" {
		opts = append(opts, "SCOPE "+scope)
	}
	if s.KeyID != "" {
		opts = append(opts, "KEY_ID "+quoteLiteral(s.KeyID))
	}
	if s.Secret != "" {
		opts = append(opts, "SECRET "+quoteLiteral(s.Secret))
	}
	if s.Endpoint != "" {
		opts = append(opts, "ENDPOINT "+quoteLiteral(s.Endpoint))
	}
	if s.URLStyle != "" {
		opts = append(opts, "URL_STYLE "+quoteLiteral(s.URLStyle))
	}
	if s.UseSSL != nil {
		opts = append(opts, fmt.Sprintf("USE_SSL %t", *s.UseSSL))
	}
	return "CREATE SECRET (\n    " + strings.Join(opts, ",\n    ") + "\n)"
}

func formatScope(scope any) string {
	switch v := scope.(type) {
	case string:
		if v == "" {
			return ""
		}
		return quoteLiteral(v)
	case []string:
		return quoteList(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		return quoteList(items)
	default:
		return ""
	}
}

func quoteList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quoteLiteral(item)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// buildCreateViewSQL exposes a scannable source under a view name.
func buildCreateViewSQL(name, source string) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM %s",
		duckdialect.DuckDB.QuoteIdentifier(name), quoteLiteral(source))
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
