package bigquery

import (
	"log/slog"

	"github.com/leapstack-labs/bookfeed/pkg/adapter"
)

func init() {
	adapter.Register("bigquery", func(logger *slog.Logger) adapter.Adapter { return New(logger) }, "bq")
}
