package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const (
	indexFile        = "index.html"
	msgNoFrontend    = "Frontend files not found. Make sure frontend/ directory exists."
	fileNotFoundTmpl = "File %s not found"
)

type staticHandler struct {
	root fs.FS
}

func newStaticHandler(dir string) *staticHandler {
	return &staticHandler{root: os.DirFS(dir)}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if len(name) == 0 {
		if !h.exists(indexFile) {
			http.Error(w, msgNoFrontend, http.StatusNotFound)
			return
		}
		http.ServeFileFS(w, r, h.root, indexFile)

		return
	}

	if !h.exists(name) {
		http.Error(w, fmt.Sprintf(fileNotFoundTmpl, name), http.StatusNotFound)
		return
	}
	http.ServeFileFS(w, r, h.root, name)
}

func (h *staticHandler) exists(name string) bool {
	info, err := fs.Stat(h.root, name)

	return nil == err && !info.IsDir()
}
