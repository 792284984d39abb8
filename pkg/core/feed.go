package core

import "time"

// ResultRow is one audiobook feed record as returned by the engine.
type ResultRow struct {
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link"`
	Uploader  string    `json:"uploader"`
	Published time.Time `json:"published"`
	Updated   time.Time `json:"updated"`
}

const isoDate = "2006-01-02"

// PublishedDate returns the publication date in ISO form, or "" when unknown.
func (r ResultRow) PublishedDate() string {
	if r.Published.IsZero() {
		return ""
	}
	return r.Published.Format(isoDate)
}

// UpdatedDate returns the record update date in ISO form, or "" when unknown.
func (r ResultRow) UpdatedDate() string {
	if r.Updated.IsZero() {
		return ""
	}
	return r.Updated.Format(isoDate)
}

// DefaultCategories is the category catalog offered when none is configured.
var DefaultCategories = []string{"Fiction", "Non-Fiction", "Mystery", "Romance", "Sci-Fi"}
