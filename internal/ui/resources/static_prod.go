//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var embedded embed.FS

var (
	staticFS, _ = fs.Sub(embedded, "static")
	sums        = fingerprints(staticFS)
)

// StaticPath returns the fingerprinted URL for an embedded asset.
func StaticPath(path string) string {
	return versioned(path, sums)
}

// Handler serves the embedded assets. URLs carry a content hash, so they
// can be cached forever.
func Handler() http.Handler {
	files := fileServer(staticFS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	})
}
