// Package core defines the shared language of the bookfeed system.
//
// This package contains:
//   - Feed entities (ResultRow, category catalog)
//   - Query values handed from the builder to adapters (QuerySpec, Param)
//   - Paging arithmetic (PageInfo)
//   - Configuration types (AdapterConfig, TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
