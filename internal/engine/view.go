package engine

import (
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/pkg/core"
)

// NoResultsMessage is shown when an evaluation yields no rows.
const NoResultsMessage = "No results found"

// View is everything a presentation needs to render one evaluation.
type View struct {
	State session.State
	Page  core.PageInfo
	Rows  []core.ResultRow
	Err   error
}

// Empty reports whether there are no rows to show.
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// Message returns the empty-result notice, or "" when there are rows.
// A failed evaluation is also empty, so it gets the notice too.
func (v View) Message() string {
	if v.Empty() {
		return NoResultsMessage
	}
	return ""
}

// ErrMessage returns the failure reason, or "" when the evaluation succeeded.
func (v View) ErrMessage() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

// Selected returns the selected row when the selection points at a row on this page.
func (v View) Selected() (core.ResultRow, bool) {
	i := v.State.Selected
	if i < 0 || i >= len(v.Rows) {
		return core.ResultRow{}, false
	}
	return v.Rows[i], true
}
