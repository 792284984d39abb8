package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/bookfeed/internal/cli/config"
	"github.com/leapstack-labs/bookfeed/pkg/core"
)

// ConfigField is one documented key of bookfeed.yaml.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Section     string // "general", "target", "search", "ui"
}

// getConfigSchema mirrors the koanf tags in internal/cli/config/types.go.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "environment", Type: "string", Default: config.DefaultEnv, Description: "Entry of environments: merged over the base target", Section: "general"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output mode: auto, text, markdown, json", Section: "general"},
		{Name: "log_format", Type: "string", Default: config.DefaultLogFormat, Description: "Log format on stderr: text or json", Section: "general"},
		{Name: "env_file", Type: "string", Default: config.DefaultEnvFile, Description: "dotenv file loaded before the environment is read", Section: "general"},

		{Name: "type", Type: "string", Default: config.DefaultTargetType, Description: "Query engine: bigquery, postgres, duckdb", Section: "target"},
		{Name: "table", Type: "string", Default: core.DefaultTable, Description: "Feed table, bare or qualified", Section: "target"},
		{Name: "project", Type: "string", Description: "BigQuery project (empty uses Application Default Credentials)", Section: "target"},
		{Name: "dataset", Type: "string", Default: core.DefaultDataset, Description: "BigQuery dataset holding the table", Section: "target"},
		{Name: "location", Type: "string", Description: "BigQuery job location", Section: "target"},
		{Name: "credentials_file", Type: "string", Description: "BigQuery service account key file", Section: "target"},
		{Name: "host", Type: "string", Description: "PostgreSQL host", Section: "target"},
		{Name: "port", Type: "int", Default: "5432", Description: "PostgreSQL port", Section: "target"},
		{Name: "user", Type: "string", Description: "PostgreSQL user", Section: "target"},
		{Name: "password", Type: "string", Description: "PostgreSQL password, usually ${VAR}", Section: "target"},
		{Name: "database", Type: "string", Description: "PostgreSQL database or DuckDB file", Section: "target"},
		{Name: "schema", Type: "string", Description: "Schema qualifying a bare table (public, main)", Section: "target"},
		{Name: "options", Type: "map[string]string", Description: "Driver options (PostgreSQL connection parameters)", Section: "target"},
		{Name: "params", Type: "map[string]any", Description: "DuckDB extensions, secrets, settings and views", Section: "target"},

		{Name: "categories", Type: "[]string", Default: strings.Join(core.DefaultCategories, ", "), Description: "Category catalog offered as filters", Section: "search"},
		{Name: "query_timeout", Type: "duration", Default: config.DefaultQueryTimeout.String(), Description: "Deadline for each query", Section: "search"},

		{Name: "port", Type: "int", Default: strconv.Itoa(config.DefaultUIPort), Description: "Web UI port", Section: "ui"},
		{Name: "auto_open", Type: "bool", Default: "true", Description: "Open a browser when serve starts", Section: "ui"},
		{Name: "watch", Type: "bool", Default: "true", Description: "Reload categories when the config file changes", Section: "ui"},
		{Name: "session_secret", Type: "string", Description: "Cookie signing key (random per run when empty)", Section: "ui"},
	}
}

// generateConfigDocs writes configuration.md into outDir.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), configurationDoc(), 0600); err != nil {
		return fmt.Errorf("failed to write configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")
	return nil
}

func configurationDoc() []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "bookfeed configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("bookfeed reads %s from the working directory or its parents. "+
		"Flags override environment variables, which override the file.", InlineCode(config.ConfigFileName)))

	sections := []struct {
		key, title, intro string
	}{
		{"general", "General", "Top-level keys:"},
		{"target", "Target", "The `target` key selects the query engine and the feed table."},
		{"search", "Search", "The `search` key shapes every evaluation."},
		{"ui", "Web UI", "The `ui` key configures `bookfeed serve`."},
	}

	fields := getConfigSchema()
	for _, s := range sections {
		w.Header(2, s.title)
		w.Paragraph(s.intro)
		var rows [][]string
		for _, f := range fields {
			if f.Section != s.key {
				continue
			}
			def := f.Default
			if def == "" {
				def = "-"
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, def, f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `target:
  type: bigquery
  project: ${GOOGLE_CLOUD_PROJECT}
  dataset: audiobookbay
  table: atom_feed

search:
  categories: [Fiction, Non-Fiction, Mystery, Romance, Sci-Fi]
  query_timeout: 30s

ui:
  port: 8765
  session_secret: ${SESSION_SECRET}

environments:
  local:
    target:
      type: duckdb
      database: feed.duckdb
      params:
        views:
          atom_feed: ./export/atom_feed.parquet`)

	w.Header(2, "Environment Variables")
	w.Paragraph("Use `${VAR_NAME}` in target fields to read secrets from the environment or `.env`.")

	return w.Bytes()
}
