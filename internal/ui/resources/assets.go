// Package resources serves the web UI's stylesheet and other static files.
package resources

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/http"
	"strings"
)

// StaticDirectoryPath is the static asset directory relative to the module root.
const StaticDirectoryPath = "internal/ui/resources/static"

const prefix = "/static/"

// fingerprints hashes every file in fsys, keyed by its slash path.
func fingerprints(fsys fs.FS) map[string]string {
	out := map[string]string{}
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil
		}
		sum := sha256.Sum256(data)
		out[path] = hex.EncodeToString(sum[:])[:12]
		return nil
	})
	return out
}

// versioned appends ?v=<hash> when the asset has a known fingerprint.
func versioned(path string, sums map[string]string) string {
	path = strings.TrimPrefix(path, "/")
	if sum, ok := sums[path]; ok {
		return prefix + path + "?v=" + sum
	}
	return prefix + path
}

// fileServer serves fsys under /static/ and refuses directory listings.
func fileServer(fsys fs.FS) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
