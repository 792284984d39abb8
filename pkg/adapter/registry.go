package adapter

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/bookfeed/pkg/core"
)

// Factory constructs an unconnected adapter.
type Factory func(*slog.Logger) Adapter

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
	aliases    = map[string]string{}
)

// Register adds an adapter factory under name and any aliases (e.g. "bq" for
// "bigquery"). Adapter packages call it from init.
func Register(name string, factory Factory, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name = strings.ToLower(name)
	factories[name] = factory
	for _, a := range alias {
		aliases[strings.ToLower(a)] = name
	}
}

// Canonical resolves an adapter type or alias to its registered name.
// Unknown types come back lowercased and trimmed.
func Canonical(typ string) string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return canonical(typ)
}

func canonical(typ string) string {
	key := strings.ToLower(strings.TrimSpace(typ))
	if name, ok := aliases[key]; ok {
		return name
	}
	return key
}

// Get retrieves an adapter factory by name or alias.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[canonical(name)]
	return f, ok
}

// NewAdapter creates an unconnected adapter for cfg.Type.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	return factory(logger), nil
}

// ListAdapters returns the registered adapter names, sorted. Aliases are not listed.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// IsRegistered reports whether name or alias resolves to an adapter.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError is returned when target.type names no registered adapter.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %s); check target.type in bookfeed.yaml",
		e.Type, strings.Join(e.Available, ", "))
}
