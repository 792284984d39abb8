package commands

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/bookfeed/internal/cli/config"
	"github.com/leapstack-labs/bookfeed/internal/cli/output"
	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/spf13/cobra"

	// Register the query engine adapters.
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/bigquery"
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/postgres"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, metrics *engine.Metrics) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmdCtx.Cfg, metrics, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		if err := eng.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close query engine", "error", err)
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.ParseMode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Catalog returns the configured category catalog.
func (c *CommandContext) Catalog() session.Catalog {
	return session.Catalog(c.Cfg.Catalog())
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	target := &config.TargetConfig{
		Type:            getEnvOrDefault(config.EnvPrefix+"TARGET__TYPE", config.DefaultTargetType),
		Project:         os.Getenv(config.EnvPrefix + "TARGET__PROJECT"),
		CredentialsFile: os.Getenv(config.EnvPrefix + "TARGET__CREDENTIALS_FILE"),
	}
	config.ApplyTargetDefaults(target)

	return &config.Config{
		Environment:  getEnvOrDefault(config.EnvPrefix+"ENVIRONMENT", config.DefaultEnv),
		Verbose:      os.Getenv(config.EnvPrefix+"VERBOSE") == "true",
		OutputFormat: getEnvOrDefault(config.EnvPrefix+"OUTPUT", config.DefaultOutput),
		LogFormat:    config.DefaultLogFormat,
		Target:       target,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, metrics *engine.Metrics, logger *slog.Logger) (*engine.Engine, error) {
	var adapterConfig core.AdapterConfig
	table := core.DefaultTable
	if cfg.Target != nil {
		adapterConfig = cfg.Target.ToAdapterConfig()
		table = cfg.Target.QualifiedTable()
	}

	return engine.New(engine.Config{
		AdapterConfig: adapterConfig,
		Table:         table,
		QueryTimeout:  cfg.QueryTimeout(),
		Metrics:       metrics,
		Logger:        logger,
	})
}
