package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/DriverComm/internal/api/httpx"
)

// mountWeb раздаёт UI диспетчера/водителя/портала из webDir.
// Неизвестные не-API пути отдают index.html. Без webDir API отвечает 404 JSON.
func mountWeb(r chi.Router, webDir string) {
	if webDir == "" {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteErrorMessage(w, http.StatusNotFound, "Not found")
		})
		return
	}

	page := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(webDir, name))
		}
	}
	r.Get("/dispatcher", page("dispatcher.html"))
	r.Get("/driver/{id}", page("driver.html"))
	r.Get("/portal/{id}", page("portal.html"))

	files := http.FileServer(http.Dir(webDir))
	index := page("index.html")
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			httpx.WriteErrorMessage(w, http.StatusNotFound, "Not found")
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			httpx.WriteErrorMessage(w, http.StatusNotFound, "Not found")
			return
		}
		clean := path.Clean("/" + r.URL.Path)
		if clean != "/" {
			if fi, err := os.Stat(filepath.Join(webDir, filepath.FromSlash(clean))); err == nil && !fi.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		index(w, r)
	})
}
