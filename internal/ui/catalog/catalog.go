// Package catalog holds the category catalog shared by all web sessions.
package catalog

import (
	"slices"
	"sync/atomic"

	"github.com/leapstack-labs/bookfeed/internal/session"
)

// Store is a concurrency-safe holder for the current catalog.
// Readers never see a partially replaced catalog.
type Store struct {
	v atomic.Pointer[session.Catalog]
}

// NewStore returns a store holding c.
func NewStore(c session.Catalog) *Store {
	s := &Store{}
	s.Set(c)
	return s
}

// Get returns the current catalog.
func (s *Store) Get() session.Catalog {
	if c := s.v.Load(); c != nil {
		return *c
	}
	return nil
}

// Set replaces the catalog. It reports whether the contents changed.
func (s *Store) Set(c session.Catalog) bool {
	c = slices.Clone(c)
	old := s.v.Swap(&c)
	return old == nil || !slices.Equal(*old, c)
}
