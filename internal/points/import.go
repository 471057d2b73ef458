package points

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconvert/internal/geo"
	"github.com/woozymasta/geoconvert/internal/input"
)

// ErrDocument is returned when imported data is not a known points document.
var ErrDocument = errors.New("unrecognized points document")

// Decode reads saved points from one of:
//
//   - a stored points array: [{"id", "lat", "lon", "timestamp", "type"}]
//   - a local storage dump holding that array as text under StorageKey
//   - a GeoJSON FeatureCollection of Point features, as FeatureCollection writes it
//
// Points outside the latitude or longitude range are rejected.
func Decode(data []byte) ([]SavedPoint, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrDocument)
	}

	var (
		pts []SavedPoint
		err error
	)
	switch data[0] {
	case '[':
		err = json.Unmarshal(data, &pts)
	case '{':
		pts, err = decodeObject(data)
	default:
		return nil, ErrDocument
	}
	if err != nil {
		return nil, err
	}

	for i := range pts {
		if err := validate(pts[i]); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		if pts[i].ID == "" {
			pts[i].ID = uuid.NewString()
		}
		if pts[i].SourceFormat == "" {
			pts[i].SourceFormat = FormatDD
		}
	}

	return pts, nil
}

func decodeObject(data []byte) ([]SavedPoint, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	if probe.Type == geo.TypeFeatureCollection {
		var fc geo.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
		return fromFeatures(fc)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc[StorageKey]
	if !ok {
		return nil, fmt.Errorf("no %q key: %w", StorageKey, ErrDocument)
	}

	// local storage values are JSON text, but accept an inline array too
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		raw = json.RawMessage(text)
	}

	var pts []SavedPoint
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, err
	}
	return pts, nil
}

func fromFeatures(fc geo.FeatureCollection) ([]SavedPoint, error) {
	pts := make([]SavedPoint, 0, len(fc.Features))
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i, f := range fc.Features {
		if f.Geometry.Type != geo.TypePoint || len(f.Geometry.Coordinates) < 2 {
			log.Debug().
				Int("feature", i).
				Str("geometry", f.Geometry.Type).
				Msg("Skipping non-point feature")
			continue
		}

		p := SavedPoint{
			ID:           f.ID,
			Longitude:    f.Geometry.Coordinates[0],
			Latitude:     f.Geometry.Coordinates[1],
			CreatedAt:    now,
			SourceFormat: FormatDD,
		}
		if s, ok := f.Properties["type"].(string); ok {
			if format, err := ParseFormat(s); err == nil {
				p.SourceFormat = format
			}
		}
		if s, ok := f.Properties["created_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				p.CreatedAt = t.UTC()
			}
		}

		pts = append(pts, p)
	}

	return pts, nil
}

func validate(p SavedPoint) error {
	if err := input.ValidateLatitude(p.Latitude); err != nil {
		return err
	}
	return input.ValidateLongitude(p.Longitude)
}

// Fetch loads a points document from a local path or an http(s) URL.
func Fetch(ctx context.Context, client *http.Client, source string) ([]SavedPoint, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		return Decode(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Import adds the points whose IDs are not stored yet and returns how many
// were added.
func Import(ctx context.Context, store Store, pts []SavedPoint) (int, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.ID] = true
	}

	added := 0
	for _, p := range pts {
		if seen[p.ID] {
			log.Debug().Str("id", p.ID).Msg("Point already stored, skipped")
			continue
		}
		if err := store.Add(ctx, p); err != nil {
			return added, err
		}
		seen[p.ID] = true
		added++
	}

	return added, nil
}
