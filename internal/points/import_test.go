package points

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconvert/internal/input"
)

func TestDecodeArray(t *testing.T) {
	pts, err := Decode([]byte(`[
		{"id":"1700000000000","lat":-6.2088,"lon":106.8456,"timestamp":1700000000000,"type":"DMS"},
		{"lat":1,"lon":2,"timestamp":0}
	]`))
	require.NoError(t, err)
	require.Len(t, pts, 2)

	assert.Equal(t, "1700000000000", pts[0].ID)
	assert.Equal(t, FormatDMS, pts[0].SourceFormat)
	assert.True(t, time.UnixMilli(1700000000000).Equal(pts[0].CreatedAt))

	assert.NotEmpty(t, pts[1].ID)
	assert.Equal(t, FormatDD, pts[1].SourceFormat)
}

func TestDecodeStorageDump(t *testing.T) {
	inner := `[{"id":"a","lat":1,"lon":2,"timestamp":5,"type":"DD"}]`
	text, err := json.Marshal(inner)
	require.NoError(t, err)

	pts, err := Decode([]byte(`{"theme":"\"dark\"","geo_saved_points":` + string(text) + `}`))
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, "a", pts[0].ID)

	pts, err = Decode([]byte(`{"geo_saved_points":` + inner + `}`))
	require.NoError(t, err)
	require.Len(t, pts, 1)

	_, err = Decode([]byte(`{"other":"[]"}`))
	require.ErrorIs(t, err, ErrDocument)
}

func TestDecodeFeatureCollection(t *testing.T) {
	src := []SavedPoint{New(-6.2088, 106.8456, FormatDMS), New(10, -20, FormatDD)}
	data, err := json.Marshal(FeatureCollection(src))
	require.NoError(t, err)

	pts, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, pts, 2)

	assert.Equal(t, src[0].ID, pts[0].ID)
	assert.Equal(t, -6.2088, pts[0].Latitude)
	assert.Equal(t, 106.8456, pts[0].Longitude)
	assert.Equal(t, FormatDMS, pts[0].SourceFormat)
	assert.True(t, src[0].CreatedAt.Truncate(time.Second).Equal(pts[0].CreatedAt))
}

func TestDecodeErrors(t *testing.T) {
	for _, s := range []string{"", "  ", "hello", "42"} {
		_, err := Decode([]byte(s))
		require.ErrorIs(t, err, ErrDocument, s)
	}

	_, err := Decode([]byte(`[{"lat":95,"lon":0}]`))
	require.ErrorIs(t, err, input.ErrOutOfRange)

	_, err = Decode([]byte(`[{"lat":`))
	require.Error(t, err)
}

func TestFetch(t *testing.T) {
	body := `[{"id":"x","lat":1,"lon":2,"timestamp":1,"type":"DD"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/points.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	ctx := context.Background()

	pts, err := Fetch(ctx, srv.Client(), srv.URL+"/points.json")
	require.NoError(t, err)
	require.Len(t, pts, 1)

	_, err = Fetch(ctx, srv.Client(), srv.URL+"/missing")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "points.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	pts, err = Fetch(ctx, srv.Client(), path)
	require.NoError(t, err)
	assert.Equal(t, "x", pts[0].ID)
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			a := New(1, 2, FormatDD)
			b := New(3, 4, FormatDMS)
			require.NoError(t, s.Add(ctx, a))

			added, err := Import(ctx, s, []SavedPoint{a, b, b})
			require.NoError(t, err)
			assert.Equal(t, 1, added)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, b.ID, list[1].ID)
		})
	}
}
