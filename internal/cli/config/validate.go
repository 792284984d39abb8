package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/bookfeed/pkg/adapter"
	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

// DefaultSchemaForType returns the default schema for a database type.
// It looks up the dialect in the registry; unknown types and dialects without
// schemas (BigQuery) get "".
func DefaultSchemaForType(dbType string) string {
	if d, ok := dialect.Get(dbType); ok {
		return d.DefaultSchema
	}
	return ""
}

// ApplyTargetDefaults resolves type aliases (bq, pg) and applies the
// per-engine defaults.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Type = adapter.Canonical(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if t.Table == "" {
		t.Table = core.DefaultTable
	}

	switch t.Type {
	case "postgres":
		if t.Port == 0 {
			t.Port = 5432
		}
	case "bigquery":
		if t.Dataset == "" && !strings.Contains(t.Table, ".") {
			t.Dataset = core.DefaultDataset
		}
	}
}

// ValidateTarget checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil || t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(t.Type) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := ValidateTarget(c.Target); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (expected text or json)", c.LogFormat)
	}
	if c.Search != nil && c.Search.QueryTimeout < 0 {
		return fmt.Errorf("search.query_timeout must not be negative")
	}
	return nil
}
