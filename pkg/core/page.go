package core

import "fmt"

// ResultsPerPage is the fixed page window size.
const ResultsPerPage = 10

// PageInfo describes where the current page sits in a result set.
type PageInfo struct {
	TotalResults   int64
	ResultsPerPage int
	CurrentPage    int
}

// NewPageInfo builds page info for a total count and 1-based page.
func NewPageInfo(total int64, page int) PageInfo {
	if total < 0 {
		total = 0
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{TotalResults: total, ResultsPerPage: ResultsPerPage, CurrentPage: page}
}

// TotalPages returns TotalResults / ResultsPerPage + 1.
// An exact multiple reports one trailing empty page (20 results => 3 pages).
func (p PageInfo) TotalPages() int {
	per := p.ResultsPerPage
	if per <= 0 {
		per = ResultsPerPage
	}
	return int(p.TotalResults/int64(per)) + 1
}

// Offset returns the row offset of the current page.
func (p PageInfo) Offset() int {
	per := p.ResultsPerPage
	if per <= 0 {
		per = ResultsPerPage
	}
	page := p.CurrentPage
	if page < 1 {
		page = 1
	}
	return (page - 1) * per
}

// Indicator renders "Page X of Y | Total Results: N".
func (p PageInfo) Indicator() string {
	return fmt.Sprintf("Page %d of %d | Total Results: %d", p.CurrentPage, p.TotalPages(), p.TotalResults)
}
