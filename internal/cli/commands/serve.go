package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bookfeed/internal/browser"
	"github.com/leapstack-labs/bookfeed/internal/cli/config"
	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the web search page",
		Long: `Start a local web server with the audiobook feed search page.

The page offers a search box, category checkboxes, a paginated result
table and a detail panel for the selected row. Each browser keeps its own
search state in a session cookie. Prometheus metrics are served at /metrics.`,
		Example: `  # Start on the configured port (default 8765)
  bookfeed serve

  # Start on a custom port without opening a browser
  bookfeed serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultUIPort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload categories when the config file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cmdCtx, cleanup, err := NewCommandContext(cmd, engine.NewMetrics(reg))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser
	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}
	if watch && cfg.ConfigFile == "" {
		cmdCtx.Logger.Debug("no config file to watch")
		watch = false
	}

	secret := uiCfg.SessionSecret
	if secret == "" {
		cmdCtx.Logger.Warn("ui.session_secret not set; sessions will not survive a restart")
		secret = uuid.NewString()
	}

	server := ui.NewServer(ui.Config{
		Backend:       cmdCtx.Engine,
		Catalog:       cmdCtx.Catalog(),
		Port:          port,
		SessionSecret: secret,
		Watch:         watch,
		ConfigFile:    cfg.ConfigFile,
		LoadCatalog:   config.LoadCatalog,
		Gatherer:      reg,
		Logger:        cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go func() {
			if err := browser.Open(url); err != nil {
				cmdCtx.Logger.Warn("failed to open browser", "error", err)
			}
		}()
	}

	r := cmdCtx.Renderer
	r.Printf("Serving bookfeed on %s\n", url)
	r.Muted("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}
