package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/bookfeed/internal/cli/config"
	"github.com/leapstack-labs/bookfeed/internal/cli/output"
	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Type    string
	Project string
	Force   bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter bookfeed.yaml",
		Long: `Write a starter bookfeed.yaml and .env.example.

The config targets BigQuery by default and includes a "local" environment
that reads an exported copy of the feed from a DuckDB file, selectable with
--target local.`,
		Example: `  # Initialize in current directory
  bookfeed init --project mybots-397304

  # Initialize in a new directory
  bookfeed init feeds

  # Force overwrite existing config
  bookfeed init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.OutputFormat))
			return runInit(r, dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", config.DefaultTargetType, "Target type: bigquery, postgres, duckdb")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Google Cloud project holding the feed dataset")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")

	return cmd
}

// starterConfig is the shape written by init; field order is the file's order.
type starterConfig struct {
	Target       starterTarget             `yaml:"target"`
	Search       starterSearch             `yaml:"search"`
	UI           starterUI                 `yaml:"ui"`
	Environments map[string]map[string]any `yaml:"environments"`
}

type starterTarget struct {
	Type            string `yaml:"type"`
	Project         string `yaml:"project,omitempty"`
	Dataset         string `yaml:"dataset,omitempty"`
	Table           string `yaml:"table"`
	Location        string `yaml:"location,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	Host            string `yaml:"host,omitempty"`
	Port            int    `yaml:"port,omitempty"`
	User            string `yaml:"user,omitempty"`
	Password        string `yaml:"password,omitempty"`
	Database        string `yaml:"database,omitempty"`
}

type starterSearch struct {
	Categories   []string `yaml:"categories"`
	QueryTimeout string   `yaml:"query_timeout"`
}

type starterUI struct {
	Port          int    `yaml:"port"`
	AutoOpen      bool   `yaml:"auto_open"`
	Watch         bool   `yaml:"watch"`
	SessionSecret string `yaml:"session_secret,omitempty"`
}

func newStarterConfig(opts *InitOptions) starterConfig {
	target := starterTarget{Type: strings.ToLower(opts.Type), Table: core.DefaultTable}
	switch target.Type {
	case "postgres":
		target.Host = "localhost"
		target.Port = 5432
		target.User = "${PGUSER}"
		target.Password = "${PGPASSWORD}"
		target.Database = "feeds"
	case "duckdb":
		target.Database = "feed.duckdb"
	default:
		// Empty project and credentials fall back to Application Default Credentials.
		target.Project = opts.Project
		target.Dataset = core.DefaultDataset
		target.Location = "US"
	}

	return starterConfig{
		Target: target,
		Search: starterSearch{
			Categories:   core.DefaultCategories,
			QueryTimeout: config.DefaultQueryTimeout.String(),
		},
		UI: starterUI{
			Port:     config.DefaultUIPort,
			AutoOpen: true,
			Watch:    true,
		},
		Environments: map[string]map[string]any{
			"local": {"target": map[string]any{"type": "duckdb", "database": "feed.duckdb"}},
		},
	}
}

func marshalStarterConfig(c starterConfig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# bookfeed configuration\n# Values like ${VAR} are read from the environment or .env.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const envExample = `# Copy to .env and fill in. Variables already set in the shell win.
GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account.json
GOOGLE_CLOUD_PROJECT=
BOOKFEED_UI__SESSION_SECRET=
`

func runInit(r *output.Renderer, dir string, opts *InitOptions) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileName)
	}

	data, err := marshalStarterConfig(newStarterConfig(opts))
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.Success("created " + configPath)

	envPath := filepath.Join(dir, ".env.example")
	if _, err := os.Stat(envPath); err != nil || opts.Force {
		if err := os.WriteFile(envPath, []byte(envExample), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", envPath, err)
		}
		r.Success("created " + envPath)
	}

	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Copy .env.example to .env and set your credentials")
	r.Println("  2. Run 'bookfeed search' to see the latest uploads")
	r.Println("  3. Run 'bookfeed serve' for the web UI")

	return nil
}
