package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves the single-page app: real files from the assets dir,
// index.html for everything else so client-side routing works after a
// refresh or deep link.
type SPAHandler struct {
	staticDir string
}

func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{staticDir: staticDir}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, errorResponse{Message: "Not found."}, http.StatusNotFound)
		return
	}

	// reject path traversal before touching the filesystem
	p := filepath.Join(h.staticDir, filepath.Clean("/"+r.URL.Path))

	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		http.ServeFile(w, r, p)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}
