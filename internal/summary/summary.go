// Package summary prepares feed summaries for display.
//
// Feed summaries arrive as whatever HTML the uploader pasted. Terminals get
// Markdown; the web UI gets HTML filtered down to a safe subset.
package summary

import (
	"strings"
	"sync"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
		policy.RequireNoReferrerOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

// IsHTML reports whether s looks like it contains markup.
func IsHTML(s string) bool {
	return strings.Contains(s, "<") && strings.Contains(s, ">")
}

// Markdown converts an HTML summary to Markdown. Plain text is returned trimmed.
// When conversion fails the raw text is returned.
func Markdown(s string) string {
	s = strings.TrimSpace(s)
	if !IsHTML(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// SanitizeHTML strips anything but user-content-safe markup from an HTML summary.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(ugcPolicy().Sanitize(s))
}
