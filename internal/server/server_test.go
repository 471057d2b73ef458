package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/points"
	"github.com/woozymasta/geoconvert/internal/tiles"
)

func newTestServer(t *testing.T) (*ServerContext, http.Handler) {
	t.Helper()

	var tile bytes.Buffer
	require.NoError(t, png.Encode(&tile, image.NewNRGBA(image.Rect(0, 0, tiles.TileSize, tiles.TileSize))))
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/3/4/5.png" {
			_, _ = w.Write(tile.Bytes())
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.Close)

	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Storage.Path = filepath.Join(dir, "points.json")
	cfg.Tiles.URL = upstream.URL + "/{z}/{x}/{y}.png"
	cfg.Tiles.CacheDir = filepath.Join(dir, "tiles")

	store, err := points.Open(cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := NewServerContext(context.Background(), cfg, store, tiles.New(upstream.Client(), cfg.Tiles))
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return srv, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestConvertDMS(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/convert/dms?deg=6&min=12&sec=31.68&dir=S", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[map[string]any](t, rec)
	assert.InDelta(t, -6.2088, got["decimal"], 1e-9)
	assert.Equal(t, "latitude", got["axis"])
	assert.Equal(t, `6° 12' 31.68" S`, got["text"])
	assert.Equal(t, map[string]any{"deg": 6.0, "min": 12.0, "sec": 31.68, "dir": "S"}, got["dms"])

	rec = do(t, h, http.MethodGet, "/api/convert/dms?deg=106&min=50&sec=44.16&dir=w", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[map[string]any](t, rec)
	assert.InDelta(t, -106.8456, got["decimal"], 1e-9)
	assert.Equal(t, "longitude", got["axis"])

	rec = do(t, h, http.MethodGet, "/api/convert/dms?dir=N", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["decimal"])

	// whole numbers written with a decimal point, as the text parser accepts
	rec = do(t, h, http.MethodGet, "/api/convert/dms?deg=6.0&min=12.0&sec=31.68&dir=S", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, -6.2088, decode[map[string]any](t, rec)["decimal"], 1e-9)

	rec = do(t, h, http.MethodGet, "/api/convert/dms?deg=6.5&dir=S", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertDMSInvalid(t *testing.T) {
	_, h := newTestServer(t)

	for _, target := range []string{
		"/api/convert/dms?deg=6&min=75&dir=S",
		"/api/convert/dms?deg=6&dir=X",
		"/api/convert/dms?deg=6",
		"/api/convert/dms?deg=six&dir=N",
		"/api/convert/dms?deg=91&dir=N",
		"/api/convert/dms?deg=1&sec=NaN&dir=N",
	} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, decode[errorResponse](t, rec).Error, target)
	}
}

func TestConvertDD(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/convert/dd?lat=-6.2088&lon=106.8456", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, `6° 12' 31.68" S`, got["lat"]["text"])
	assert.Equal(t, `106° 50' 44.16" E`, got["lon"]["text"])

	rec = do(t, h, http.MethodGet, "/api/convert/dd?lat=0&lon=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[map[string]map[string]any](t, rec)
	assert.Equal(t, `0° 0' 0" N`, got["lat"]["text"])
	assert.Equal(t, `0° 0' 0" E`, got["lon"]["text"])

	for _, target := range []string{
		"/api/convert/dd?lat=91&lon=0",
		"/api/convert/dd?lat=0&lon=-180.5",
		"/api/convert/dd?lat=abc&lon=0",
		"/api/convert/dd?lon=0",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, target, "").Code, target)
	}
}

func TestConvertParse(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, `/api/convert/parse?q=6%C2%B0+12%27+31.68%22+S`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, -6.2088, decode[map[string]any](t, rec)["decimal"], 1e-9)

	rec = do(t, h, http.MethodGet, "/api/convert/parse?q=hello", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPoints(t *testing.T) {
	srv, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/points", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/points", `{"lat":-6.2088,"lon":106.8456,"type":"DMS"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	added := decode[pointResponse](t, rec)
	assert.NotEmpty(t, added.Point.ID)
	assert.Equal(t, points.FormatDMS, added.Point.SourceFormat)
	assert.Equal(t, 1, added.Count)
	assert.Equal(t, 16, added.View.Zoom)
	assert.InDelta(t, -6.2088, added.View.Center.Lat, 1e-9)

	rec = do(t, h, http.MethodGet, "/api/points", "")
	list := decode[[]points.SavedPoint](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, added.Point.ID, list[0].ID)

	rec = do(t, h, http.MethodGet, "/api/points.geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	fc := decode[map[string]any](t, rec)
	assert.Equal(t, "FeatureCollection", fc["type"])
	assert.Len(t, fc["features"], 1)

	rec = do(t, h, http.MethodDelete, "/api/points", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/points", "")
	assert.JSONEq(t, "[]", rec.Body.String())

	pins, err := srv.Map.Pins()
	require.NoError(t, err)
	assert.Empty(t, pins)
}

func TestPointsInvalid(t *testing.T) {
	_, h := newTestServer(t)

	for _, body := range []string{
		`{"lat":1,"lon":2,"type":"UTM"}`,
		`{"lon":2,"type":"DD"}`,
		`{"lat":95,"lon":2,"type":"DD"}`,
		`{"lat":`,
	} {
		rec := do(t, h, http.MethodPost, "/api/points", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := do(t, h, http.MethodGet, "/api/points", "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestView(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[viewResponse](t, rec)
	assert.Equal(t, 12, v.Zoom)
	assert.Equal(t, "ID", v.Language)
	assert.Equal(t, 16, v.PinZoom)
	assert.InDelta(t, 106.8456, v.Center.Lon, 1e-9)

	rec = do(t, h, http.MethodPost, "/api/view/zoom", `{"delta":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 13, decode[viewResponse](t, rec).Zoom)

	rec = do(t, h, http.MethodPost, "/api/view", `{"lat":10,"lon":20}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[viewResponse](t, rec)
	assert.Equal(t, 13, v.Zoom)
	assert.InDelta(t, 10, v.Center.Lat, 1e-9)

	rec = do(t, h, http.MethodPost, "/api/view", `{"lat":100,"lon":20}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, body := range []string{"", "{}", `{"lat":10}`, `{"lon":20,"zoom":5}`} {
		rec = do(t, h, http.MethodPost, "/api/view", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	rec = do(t, h, http.MethodGet, "/api/view", "")
	assert.InDelta(t, 10, decode[viewResponse](t, rec).Center.Lat, 1e-9)

	rec = do(t, h, http.MethodPost, "/api/view/home", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[viewResponse](t, rec)
	assert.Equal(t, 12, v.Zoom)
	assert.InDelta(t, -6.2088, v.Center.Lat, 1e-9)
}

func TestClosedController(t *testing.T) {
	srv, h := newTestServer(t)
	srv.Close()

	rec := do(t, h, http.MethodGet, "/api/view", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/points", `{"lat":1,"lon":2,"type":"DD"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	stored, err := srv.Store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestI18n(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/i18n/en", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
	assert.Equal(t, "Save & Pin", decode[map[string]string](t, rec)["btnConfirm"])

	rec = do(t, h, http.MethodGet, "/api/i18n/xx", "")
	assert.Equal(t, "Batal", decode[map[string]string](t, rec)["btnCancel"])
}

func TestTiles(t *testing.T) {
	srv, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/tiles/light/3/4/5.webp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
	assert.NotEqual(t, srv.TransparentTile, rec.Body.Bytes())

	// missing upstream
	rec = do(t, h, http.MethodGet, "/tiles/dark/3/1/1.webp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, srv.TransparentTile, rec.Body.Bytes())

	for _, target := range []string{
		"/tiles/sepia/3/4/5.webp",
		"/tiles/light/3/4/5.png",
		"/tiles/light/3/9/5.webp",
		"/tiles/light/a/4/5.webp",
	} {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, target, "").Code, target)
	}
}

func TestIndexAndFavicon(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GeoConvert")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/robots.txt", "").Code)

	rec = do(t, h, http.MethodGet, "/favicon.ico", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
}

func TestMetrics(t *testing.T) {
	_, h := newTestServer(t)

	do(t, h, http.MethodGet, "/api/convert/dd?lat=1&lon=2", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `geoconvert_convert_conversions_total{kind="dd",result="ok"}`)
	assert.Contains(t, rec.Body.String(), "geoconvert_http_requests_total")
}
