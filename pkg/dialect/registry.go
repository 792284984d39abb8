package dialect

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	byName     = map[string]*Dialect{}
	aliasOf    = map[string]string{}
)

// Register adds d under its lowercased name and any aliases.
// Engine dialect packages call it from init.
func Register(d *Dialect, aliases ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := strings.ToLower(d.Name)
	byName[name] = d
	for _, a := range aliases {
		aliasOf[strings.ToLower(a)] = name
	}
}

// Get looks a dialect up by name or alias, ignoring case.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliasOf[key]; ok {
		key = canonical
	}
	d, ok := byName[key]
	return d, ok
}

// List returns the registered dialect names, sorted. Aliases are not listed.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(byName))
}
