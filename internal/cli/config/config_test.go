package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bookfeed/pkg/core"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/bigquery"
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/bookfeed/pkg/adapters/postgres"
)

// writeConfig writes a bookfeed.yaml into a fresh directory, makes it the
// working directory and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name      string
		target    *TargetConfig
		wantErr   bool
		errSubstr string
	}{
		{
			name:      "nil target",
			target:    nil,
			wantErr:   true,
			errSubstr: "target type is required",
		},
		{
			name:      "empty type",
			target:    &TargetConfig{Type: ""},
			wantErr:   true,
			errSubstr: "target type is required",
		},
		{name: "valid bigquery", target: &TargetConfig{Type: "bigquery"}},
		{name: "valid bigquery uppercase", target: &TargetConfig{Type: "BigQuery"}},
		{name: "valid duckdb", target: &TargetConfig{Type: "duckdb"}},
		{name: "valid postgres", target: &TargetConfig{Type: "postgres"}},
		{
			name:      "unknown type mysql",
			target:    &TargetConfig{Type: "mysql"},
			wantErr:   true,
			errSubstr: "unknown adapter type",
		},
		{
			name:      "unknown type snowflake",
			target:    &TargetConfig{Type: "snowflake"},
			wantErr:   true,
			errSubstr: "unknown adapter type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.target)
			if tt.wantErr {
				require.Error(t, err, "expected error but got nil")
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidateTarget_ErrorContainsAvailable verifies that validation errors
// include the list of available adapters.
func TestValidateTarget_ErrorContainsAvailable(t *testing.T) {
	err := ValidateTarget(&TargetConfig{Type: "invalid_db"})
	require.Error(t, err, "expected error for invalid type")

	errStr := err.Error()
	assert.Contains(t, errStr, "bigquery", "error should list available adapters")
	assert.Contains(t, errStr, "duckdb", "error should list available adapters")
	assert.Contains(t, errStr, "bookfeed.yaml", "error should mention config file")
}

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"duckdb", "main"},
		{"DuckDB", "main"},
		{"postgres", "public"},
		{"bigquery", ""},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestApplyTargetDefaults(t *testing.T) {
	t.Run("bigquery gets dataset and table", func(t *testing.T) {
		target := &TargetConfig{Type: "BigQuery", Project: "mybots-397304"}
		ApplyTargetDefaults(target)
		assert.Equal(t, "bigquery", target.Type)
		assert.Equal(t, core.DefaultDataset, target.Dataset)
		assert.Equal(t, core.DefaultTable, target.Table)
		assert.Equal(t, "mybots-397304.audiobookbay.atom_feed", target.QualifiedTable())
	})

	t.Run("bigquery qualified table keeps empty dataset", func(t *testing.T) {
		target := &TargetConfig{Type: "bigquery", Table: "p.d.t"}
		ApplyTargetDefaults(target)
		assert.Empty(t, target.Dataset)
		assert.Equal(t, "p.d.t", target.QualifiedTable())
	})

	t.Run("postgres gets port and schema", func(t *testing.T) {
		target := &TargetConfig{Type: "postgres"}
		ApplyTargetDefaults(target)
		assert.Equal(t, 5432, target.Port)
		assert.Equal(t, "public", target.Schema)
	})

	t.Run("aliases resolve to the engine name", func(t *testing.T) {
		for alias, want := range map[string]string{"bq": "bigquery", "PG": "postgres", "postgresql": "postgres"} {
			target := &TargetConfig{Type: alias}
			ApplyTargetDefaults(target)
			assert.Equal(t, want, target.Type, alias)
		}
		pg := &TargetConfig{Type: "pg"}
		ApplyTargetDefaults(pg)
		assert.Equal(t, 5432, pg.Port)
	})

	t.Run("preserves existing schema", func(t *testing.T) {
		target := &TargetConfig{Type: "duckdb", Schema: "custom"}
		ApplyTargetDefaults(target)
		assert.Equal(t, "custom", target.Schema)
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { ApplyTargetDefaults(nil) })
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"variable in path", "/path/to/${TEST_VAR_ONE}/file", "/path/to/value_one/file"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("both nil returns nil", func(t *testing.T) {
		assert.Nil(t, MergeTargetConfig(nil, nil))
	})

	t.Run("override replaces base fields", func(t *testing.T) {
		base := &TargetConfig{
			Type:     "bigquery",
			Project:  "base-project",
			Dataset:  "audiobookbay",
			Location: "US",
		}
		override := &TargetConfig{
			Project:         "prod-project",
			CredentialsFile: "/secrets/prod.json",
		}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, "bigquery", result.Type, "Type should be inherited from base")
		assert.Equal(t, "prod-project", result.Project)
		assert.Equal(t, "audiobookbay", result.Dataset)
		assert.Equal(t, "US", result.Location)
		assert.Equal(t, "/secrets/prod.json", result.CredentialsFile)
		assert.Equal(t, "base-project", base.Project, "base must not be modified")
	})

	t.Run("options and params are merged", func(t *testing.T) {
		base := &TargetConfig{
			Type:    "duckdb",
			Options: map[string]string{"key1": "base_value1", "key2": "base_value2"},
			Params:  map[string]any{"extensions": []any{"httpfs"}},
		}
		override := &TargetConfig{
			Options: map[string]string{"key2": "override_value2", "key3": "override_value3"},
			Params:  map[string]any{"settings": map[string]any{"threads": "2"}},
		}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, "base_value1", result.Options["key1"])
		assert.Equal(t, "override_value2", result.Options["key2"])
		assert.Equal(t, "override_value3", result.Options["key3"])
		assert.Contains(t, result.Params, "extensions")
		assert.Contains(t, result.Params, "settings")
		assert.Equal(t, "base_value2", base.Options["key2"], "base options must not be modified")
	})
}

const envsConfig = `target:
  type: bigquery
  project: dev-project
  location: US
search:
  categories: [Fiction, Mystery]
  query_timeout: 5s
environments:
  local:
    target:
      type: duckdb
      database: feed.duckdb
  prod:
    target:
      project: prod-project
      credentials_file: ${TEST_BOOKFEED_CREDS}
`

func TestLoadConfigWithTarget(t *testing.T) {
	t.Run("defaults with no config file", func(t *testing.T) {
		ResetConfig()
		t.Chdir(t.TempDir())

		cfg, err := LoadConfigWithTarget("", "", nil)
		require.NoError(t, err)

		assert.Empty(t, cfg.ConfigFile)
		assert.Equal(t, DefaultTargetType, cfg.Target.Type)
		assert.Equal(t, "audiobookbay.atom_feed", cfg.Target.QualifiedTable())
		assert.Equal(t, core.DefaultCategories, cfg.Catalog())
		assert.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout())
		assert.Equal(t, DefaultOutput, cfg.OutputFormat)
		assert.Equal(t, DefaultUIPort, cfg.GetUIConfig().Port)
	})

	t.Run("base target", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, envsConfig)

		cfg, err := LoadConfigWithTarget("", "", nil)
		require.NoError(t, err)

		assert.Equal(t, path, cfg.ConfigFile)
		assert.Equal(t, path, GetConfigFileUsed())
		assert.Equal(t, "dev-project.audiobookbay.atom_feed", cfg.Target.QualifiedTable())
		assert.Equal(t, []string{"Fiction", "Mystery"}, cfg.Catalog())
		assert.Equal(t, 5*time.Second, cfg.QueryTimeout())
		assert.Same(t, cfg, GetCurrentConfig())
	})

	t.Run("target override switches adapter", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, envsConfig)

		cfg, err := LoadConfigWithTarget(path, "local", nil)
		require.NoError(t, err)

		assert.Equal(t, "duckdb", cfg.Target.Type)
		assert.Equal(t, "feed.duckdb", cfg.Target.Database)
		assert.Equal(t, "main", cfg.Target.Schema)
	})

	t.Run("target override expands env vars", func(t *testing.T) {
		ResetConfig()
		t.Setenv("TEST_BOOKFEED_CREDS", "/secrets/sa.json")
		path := writeConfig(t, envsConfig)

		cfg, err := LoadConfigWithTarget(path, "prod", nil)
		require.NoError(t, err)

		assert.Equal(t, "prod-project", cfg.Target.Project)
		assert.Equal(t, "US", cfg.Target.Location)
		assert.Equal(t, "/secrets/sa.json", cfg.Target.CredentialsFile)
	})

	t.Run("nonexistent environment uses base target", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, envsConfig)

		cfg, err := LoadConfigWithTarget(path, "nonexistent", nil)
		require.NoError(t, err)
		assert.Equal(t, "bigquery", cfg.Target.Type)
	})

	t.Run("config found in parent directory", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, envsConfig)
		child := filepath.Join(filepath.Dir(path), "a", "b")
		require.NoError(t, os.MkdirAll(child, 0750))
		t.Chdir(child)

		cfg, err := LoadConfigWithTarget("", "", nil)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.ConfigFile)
	})

	t.Run("invalid unknown type", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, "target:\n  type: mysql\n")

		_, err := LoadConfigWithTarget(path, "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid target configuration")
		assert.Contains(t, err.Error(), "mysql")
	})

	t.Run("unreadable config file", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, "target: [unclosed\n")

		_, err := LoadConfigWithTarget(path, "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

func TestLoadConfigWithTarget_Precedence(t *testing.T) {
	const content = "output: json\ntarget:\n  type: duckdb\n  database: from_file.duckdb\n"

	t.Run("env overrides file", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, content)
		t.Setenv("BOOKFEED_OUTPUT", "markdown")
		t.Setenv("BOOKFEED_TARGET__DATABASE", "from_env.duckdb")

		cfg, err := LoadConfigWithTarget(path, "", nil)
		require.NoError(t, err)

		assert.Equal(t, "markdown", cfg.OutputFormat)
		assert.Equal(t, "from_env.duckdb", cfg.Target.Database)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, content)
		t.Setenv("BOOKFEED_OUTPUT", "markdown")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("output", "", "output format")
		flags.String("target", "", "target")
		require.NoError(t, flags.Set("output", "text"))
		require.NoError(t, flags.Set("target", "ignored"))

		cfg, err := LoadConfigWithTarget(path, "", flags)
		require.NoError(t, err)

		assert.Equal(t, "text", cfg.OutputFormat, "flag value should override config file and env var")
		assert.Equal(t, "duckdb", cfg.Target.Type, "--target must not be decoded as the target block")
	})

	t.Run("unset flag falls back to env", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, content)
		t.Setenv("BOOKFEED_OUTPUT", "markdown")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("output", "", "output format")

		cfg, err := LoadConfigWithTarget(path, "", flags)
		require.NoError(t, err)
		assert.Equal(t, "markdown", cfg.OutputFormat)
	})
}

func TestLoadConfigWithTarget_DotEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "target:\n  type: postgres\n  password: ${TEST_BOOKFEED_PG_PASSWORD}\n")
	dotenv := filepath.Join(filepath.Dir(path), "local.env")
	require.NoError(t, os.WriteFile(dotenv, []byte("TEST_BOOKFEED_PG_PASSWORD=s3cret\nBOOKFEED_LOG_FORMAT=json\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("TEST_BOOKFEED_PG_PASSWORD")
		_ = os.Unsetenv("BOOKFEED_LOG_FORMAT")
	})

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env-file", "", "env file")
	require.NoError(t, flags.Set("env-file", dotenv))

	cfg, err := LoadConfigWithTarget(path, "", flags)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5432, cfg.Target.Port)
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
	assert.NoError(t, loadDotEnv(""))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	withCategories := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(withCategories, []byte("search:\n  categories:\n    - Horror\n    - Sci-Fi\n"), 0600))
	got, err := LoadCatalog(withCategories)
	require.NoError(t, err)
	assert.Equal(t, []string{"Horror", "Sci-Fi"}, got)

	without := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(without, []byte("target:\n  type: bigquery\n"), 0600))
	got, err = LoadCatalog(without)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategories, got)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{Target: &TargetConfig{Type: "bigquery"}, LogFormat: "json"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := &Config{Target: &TargetConfig{Type: "bigquery"}, LogFormat: "xml"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log_format")
	})

	t.Run("missing target", func(t *testing.T) {
		err := (&Config{}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target type is required")
	})
}
