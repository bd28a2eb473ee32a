package api

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
)

//go:embed dist/*
var distFiles embed.FS

// frontend is the single-page UI. Paths without an extension are client
// routes and get index.html.
func frontend() http.Handler {
	site, err := fs.Sub(distFiles, "dist")
	if err != nil {
		panic(err) // dist/* is embedded at build time
	}
	files := http.FileServerFS(site)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) == "" {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFileFS(w, r, site, "index.html")
			return
		}
		files.ServeHTTP(w, r)
	})
}
