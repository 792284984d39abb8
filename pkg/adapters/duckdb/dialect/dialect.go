// Package dialect provides the DuckDB SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

func init() {
	dialect.Register(DuckDB)
}

// DuckDB is the DuckDB dialect configuration. DuckDB uses RE2.
var DuckDB = dialect.NewDialect("duckdb").
	Identifiers(`"`, `"`, `""`, false).
	DefaultSchema("main").
	PlaceholderStyle(dialect.PlaceholderDollar).
	Strings(true, false).
	RegexFunction("regexp_matches").
	WordBoundary(`\b`).
	Build()
