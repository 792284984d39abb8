package tui

import "github.com/leapstack-labs/bookfeed/internal/engine"

// viewLoadedMsg carries the result of one search cycle. seq drops results of
// cycles that were superseded while in flight.
type viewLoadedMsg struct {
	seq  int
	view engine.View
}

type openErrMsg struct {
	err error
}
