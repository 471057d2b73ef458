// Package server handles HTTP requests and middleware.
package server

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconvert/internal/geo"
	"github.com/woozymasta/geoconvert/internal/tiles"
)

// Routes registers every handler on a new mux and wraps it with RequestLogger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/convert/dms", s.HandleConvertDMS)
	mux.HandleFunc("GET /api/convert/dd", s.HandleConvertDD)
	mux.HandleFunc("GET /api/convert/parse", s.HandleConvertParse)

	mux.HandleFunc("GET /api/points", s.HandlePointsList)
	mux.HandleFunc("POST /api/points", s.HandlePointsAdd)
	mux.HandleFunc("DELETE /api/points", s.HandlePointsClear)
	mux.HandleFunc("GET /api/points.geojson", s.HandlePointsGeoJSON)

	mux.HandleFunc("GET /api/view", s.HandleView)
	mux.HandleFunc("POST /api/view", s.HandleViewFly)
	mux.HandleFunc("POST /api/view/home", s.HandleViewHome)
	mux.HandleFunc("POST /api/view/zoom", s.HandleViewZoom)

	mux.HandleFunc("GET /api/i18n/{lang}", s.HandleI18n)
	mux.HandleFunc("GET /tiles/{style}/{z}/{x}/{y}", s.HandleTile)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /favicon.ico", s.HandleFavicon)
	mux.HandleFunc("GET /", s.HandleIndex)

	return RequestLogger(mux)
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	h := fnv.New64a()
	_, _ = h.Write(s.IndexHTML)
	etag := fmt.Sprintf(`"%x"`, h.Sum64())

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleTile serves a map tile from the cache, fetching it upstream on a miss.
// Missing tiles get a transparent tile so the map keeps rendering.
func (s *ServerContext) HandleTile(w http.ResponseWriter, r *http.Request) {
	style, err := tiles.ParseStyle(r.PathValue("style"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	coord, ok := parseTilePath(r.PathValue("z"), r.PathValue("x"), r.PathValue("y"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := s.Tiles.Get(r.Context(), style, coord)
	switch {
	case err == nil:
		tileRequests.WithLabelValues(string(style), "ok").Inc()
		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write(data)
		return

	case errors.Is(err, tiles.ErrNotFound):
		tileRequests.WithLabelValues(string(style), "missing").Inc()

	default:
		tileRequests.WithLabelValues(string(style), "error").Inc()
		log.Warn().
			Err(err).
			Str("tile", coord.String()).
			Str("style", string(style)).
			Msg("Failed to load tile")
	}

	// short cache, upstream may recover
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.TransparentTile)
}

// parseTilePath reads z, x and "y.webp" path segments.
func parseTilePath(zs, xs, ys string) (geo.TileCoordinate, bool) {
	ys, ok := strings.CutSuffix(ys, ".webp")
	if !ok {
		return geo.TileCoordinate{}, false
	}

	z, errZ := strconv.Atoi(zs)
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errZ != nil || errX != nil || errY != nil {
		return geo.TileCoordinate{}, false
	}

	c := geo.TileCoordinate{Z: z, X: x, Y: y}
	return c, c.Valid()
}
