// Package session holds the per-user filter, paging and selection state.
//
// State is a value: each transition returns a new State and leaves the
// receiver untouched, so callers own exactly one copy per session and pass
// it through the evaluation cycle explicitly.
package session

import (
	"slices"
	"strings"
)

// NoSelection marks that no result row is selected.
const NoSelection = -1

// State is one session's filter, page cursor and row selection.
//
// LastTerm and LastCategories are the filter values of the previous
// evaluation; a filter that differs from them restarts paging.
type State struct {
	Term       string   `json:"term"`
	Categories []string `json:"categories"`
	Page       int      `json:"page"`
	Selected   int      `json:"selected"`

	LastTerm       string   `json:"last_term"`
	LastCategories []string `json:"last_categories"`
}

// New returns the state a session starts with: empty filter, first page, nothing selected.
func New() State {
	return State{Page: 1, Selected: NoSelection}
}

// Normalize repairs a state decoded from untrusted storage.
func (s State) Normalize() State {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Selected < NoSelection {
		s.Selected = NoSelection
	}
	return s
}

// HasSelection reports whether a row is selected.
func (s State) HasSelection() bool {
	return s.Selected >= 0
}

// WithFilter applies a new term and category selection.
// Categories not in catalog are dropped and duplicates collapse to their first
// occurrence; a nil catalog accepts any category. When the result differs from
// the last evaluated filter the page restarts at 1 and the selection clears.
func (s State) WithFilter(term string, categories []string, catalog Catalog) State {
	s.Term = term
	s.Categories = catalog.Filter(categories)
	if s.FilterChanged() {
		s.Page = 1
		s.Selected = NoSelection
	}
	return s
}

// FilterChanged reports whether the filter differs from the last evaluation.
// Term comparison is exact; category comparison is order-sensitive.
func (s State) FilterChanged() bool {
	return s.Term != s.LastTerm || !slices.Equal(s.Categories, s.LastCategories)
}

// Next advances one page. There is no upper bound.
func (s State) Next() State {
	s.Page++
	s.Selected = NoSelection
	return s
}

// Prev goes back one page; it is a no-op on the first page.
func (s State) Prev() State {
	if s.Page <= 1 {
		return s
	}
	s.Page--
	s.Selected = NoSelection
	return s
}

// ToggleRow selects row i, or clears the selection when i is already selected.
// Negative indexes are ignored.
func (s State) ToggleRow(i int) State {
	if i < 0 {
		return s
	}
	if s.Selected == i {
		s.Selected = NoSelection
	} else {
		s.Selected = i
	}
	return s
}

// ClearSelection deselects any row.
func (s State) ClearSelection() State {
	s.Selected = NoSelection
	return s
}

// Commit records the current filter as the last evaluated one.
func (s State) Commit() State {
	s.LastTerm = s.Term
	s.LastCategories = slices.Clone(s.Categories)
	return s
}

// Catalog is the fixed list of categories a user may pick from.
type Catalog []string

// Contains reports whether name is in the catalog, ignoring case.
func (c Catalog) Contains(name string) bool {
	_, ok := c.lookup(name)
	return ok
}

// Filter keeps the catalog members of selected, in selection order, spelled as
// in the catalog. A nil catalog keeps every non-blank name.
func (c Catalog) Filter(selected []string) []string {
	if len(selected) == 0 {
		return nil
	}
	out := make([]string, 0, len(selected))
	for _, name := range selected {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if c != nil {
			canonical, ok := c.lookup(name)
			if !ok {
				continue
			}
			name = canonical
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Toggle adds name to selected when absent and removes it when present.
func (c Catalog) Toggle(selected []string, name string) []string {
	if i := slices.Index(selected, name); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return c.Filter(append(slices.Clone(selected), name))
}

func (c Catalog) lookup(name string) (string, bool) {
	for _, member := range c {
		if strings.EqualFold(member, name) {
			return member, true
		}
	}
	return "", false
}
