//go:build dev

package resources

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir resolves static/ next to this source file so `-tags dev` builds
// pick up stylesheet edits without rebuilding.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// StaticPath returns the plain URL; edits show up on reload.
func StaticPath(path string) string {
	return versioned(path, nil)
}

// Handler serves assets straight from disk with caching disabled.
func Handler() http.Handler {
	dir := staticDir()
	slog.Info("static assets served from filesystem", slog.String("path", dir))
	files := fileServer(os.DirFS(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}
