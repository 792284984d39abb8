// Package adapter defines the contract between the search engine and the
// query engines that hold the feed table.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves from init(); import them with a blank identifier.
package adapter

import (
	"context"

	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Adapter runs built feed queries against one query engine.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Ping checks the engine is reachable.
	Ping(ctx context.Context) error

	// QueryCount runs a count query and returns its single integer cell.
	QueryCount(ctx context.Context, spec core.QuerySpec) (int64, error)

	// QueryRows runs a data query and returns the projected feed rows in order.
	QueryRows(ctx context.Context, spec core.QuerySpec) ([]core.ResultRow, error)

	// Dialect returns the SQL dialect queries for this adapter must be built with.
	Dialect() *dialect.Dialect
}

// Estimator is implemented by adapters that can price a query without running it.
type Estimator interface {
	// EstimateBytes reports how many bytes the query would scan.
	EstimateBytes(ctx context.Context, spec core.QuerySpec) (int64, error)
}
