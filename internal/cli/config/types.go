// Package config provides configuration management for the bookfeed CLI.
//
// The target type lives in pkg/core so adapters and the engine can share it
// without importing CLI code; it is re-exported here for convenience.
package config

import (
	"time"

	"github.com/leapstack-labs/bookfeed/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// SearchConfig holds the search behaviour knobs.
type SearchConfig struct {
	// Categories is the catalog offered in the filter bar.
	Categories []string `koanf:"categories"`
	// QueryTimeout bounds each remote query.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// UIConfig holds configuration for the web UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultUIPort,
		AutoOpen: true,
		Watch:    true,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return ui
}

// Catalog returns the configured category catalog, falling back to the built-in list.
func (c *Config) Catalog() []string {
	if c.Search == nil || len(c.Search.Categories) == 0 {
		return core.DefaultCategories
	}
	return c.Search.Categories
}

// QueryTimeout returns the configured per-query timeout.
func (c *Config) QueryTimeout() time.Duration {
	if c.Search == nil || c.Search.QueryTimeout <= 0 {
		return DefaultQueryTimeout
	}
	return c.Search.QueryTimeout
}

// Config holds all CLI configuration options.
type Config struct {
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	LogFormat    string               `koanf:"log_format"`
	EnvFile      string               `koanf:"env_file"`
	Target       *TargetConfig        `koanf:"target"`
	Search       *SearchConfig        `koanf:"search"`
	UI           *UIConfig            `koanf:"ui"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	ConfigFileName    = "bookfeed.yaml"
	ConfigFileNameAlt = "bookfeed.yml"

	DefaultEnv          = "dev"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogFormat    = "text"
	DefaultEnvFile      = ".env"
	DefaultTargetType   = "bigquery"
	DefaultUIPort       = 8765
	DefaultQueryTimeout = 30 * time.Second
)
