package server

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// pages maps the site's extensionless routes to their files.
var pages = map[string]string{
	"/":            "index.html",
	"/information": "information.html",
	"/downgrade":   "downgrade.html",
	"/terms":       "terms.html",
	"/privacy":     "privacy.html",
}

type static struct {
	fsys fs.FS
}

// newStatic serves files from dir. Without a usable dir every path is a
// JSON 404.
func newStatic(dir string) http.Handler {
	if dir == "" {
		return &static{}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return &static{}
	}
	return &static{fsys: os.DirFS(dir)}
}

func (s *static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.fsys == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name, ok := pages[r.URL.Path]
	if !ok {
		name = strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	}
	if info, err := fs.Stat(s.fsys, name); err == nil && !info.IsDir() {
		http.ServeFileFS(w, r, s.fsys, name)
		return
	}

	index, err := fs.ReadFile(s.fsys, "index.html")
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(index)
}
