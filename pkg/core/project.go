package core

import "strings"

// TargetConfig holds the query engine target as written in bookfeed.yaml.
type TargetConfig struct {
	Type string `koanf:"type"` // bigquery, postgres, duckdb

	// Table is the feed table. For BigQuery this is "project.dataset.table";
	// Project and Dataset fill in missing leading parts.
	Table   string `koanf:"table"`
	Project string `koanf:"project"`
	Dataset string `koanf:"dataset"`

	// BigQuery-specific
	Location        string `koanf:"location"`
	CredentialsFile string `koanf:"credentials_file"`

	// File-based databases (DuckDB)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// QualifiedTable returns the feed table path with project/dataset or schema
// prefixes applied when the configured table name is not already qualified.
func (t *TargetConfig) QualifiedTable() string {
	table := t.Table
	if table == "" {
		table = DefaultTable
	}
	parts := strings.Split(table, ".")
	switch strings.ToLower(t.Type) {
	case "bigquery":
		if len(parts) == 1 && t.Dataset != "" {
			parts = append([]string{t.Dataset}, parts...)
		}
		if len(parts) == 2 && t.Project != "" {
			parts = append([]string{t.Project}, parts...)
		}
	default:
		if len(parts) == 1 && t.Schema != "" {
			parts = append([]string{t.Schema}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

// ToAdapterConfig converts the target into the connection settings an adapter needs.
func (t *TargetConfig) ToAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Type:            strings.ToLower(t.Type),
		Path:            t.Database,
		Host:            t.Host,
		Port:            t.Port,
		Database:        t.Database,
		Username:        t.User,
		Password:        t.Password,
		Schema:          t.Schema,
		Project:         t.Project,
		Location:        t.Location,
		CredentialsFile: t.CredentialsFile,
		Options:         t.Options,
		Params:          t.Params,
	}
}

// DefaultTable is the feed table name used when none is configured.
const DefaultTable = "atom_feed"

// DefaultDataset is the BigQuery dataset holding the feed table.
const DefaultDataset = "audiobookbay"
