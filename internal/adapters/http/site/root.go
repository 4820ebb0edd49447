// Package site serves the widget's embedded static assets.
package site

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// assetMaxAge is how long browsers may cache embedded assets.
const assetMaxAge = 24 * time.Hour

// Register attaches the static asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.StripPrefix("/static/", http.FileServer(FS()))
	mux.Handle("GET /static/", cacheControl(files))
}

func cacheControl(next http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(int(assetMaxAge/time.Second))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	})
}
