// Package dialect provides the PostgreSQL SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

func init() {
	dialect.Register(Postgres, "postgresql", "pg")
}

// Postgres is the PostgreSQL dialect configuration.
// Advanced regular expressions spell the word boundary \y; \b is a backspace.
var Postgres = dialect.NewDialect("postgres").
	Identifiers(`"`, `"`, `""`, false).
	DefaultSchema("public").
	PlaceholderStyle(dialect.PlaceholderDollar).
	Strings(true, false).
	RegexOperator("~").
	WordBoundary(`\y`).
	CastParams(map[string]string{"STRING": "text", "INT64": "bigint"}).
	Build()
