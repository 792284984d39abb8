// Package dialect provides the BigQuery (GoogleSQL) dialect definition.
// This package is lightweight and has no client library dependencies.
package dialect

import (
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

func init() {
	dialect.Register(BigQuery, "bq")
}

// BigQuery is the GoogleSQL dialect configuration.
// Table paths like project.dataset.table are quoted as a single backticked name.
var BigQuery = dialect.NewDialect("bigquery").
	Identifiers("`", "`", "\\`", true).
	PlaceholderStyle(dialect.PlaceholderNamed).
	Strings(false, true).
	RegexFunction("REGEXP_CONTAINS").
	WordBoundary(`\b`).
	Build()
