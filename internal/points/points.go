// Package points persists the coordinates a user saved and pinned on the map.
package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/coord"
	"github.com/woozymasta/geoconvert/internal/geo"
)

// StorageKey is the local storage key the saved points live under.
const StorageKey = "geo_saved_points"

// Format is the input form a point was entered in.
type Format string

// Source formats.
const (
	FormatDMS Format = "DMS"
	FormatDD  Format = "DD"
)

// ErrFormat is returned for an unknown source format.
var ErrFormat = errors.New("unknown source format")

// ParseFormat accepts DMS or DD in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(strings.TrimSpace(s))) {
	case FormatDMS:
		return FormatDMS, nil
	case FormatDD:
		return FormatDD, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrFormat)
}

// SavedPoint is a confirmed pin. It is never mutated once stored.
type SavedPoint struct {
	CreatedAt    time.Time `json:"-"`
	ID           string    `json:"id"`
	SourceFormat Format    `json:"type"`
	Latitude     float64   `json:"lat"`
	Longitude    float64   `json:"lon"`
}

// New creates a point with a fresh ID stamped with the current time.
func New(lat, lon float64, format Format) SavedPoint {
	return SavedPoint{
		ID:           uuid.NewString(),
		Latitude:     lat,
		Longitude:    lon,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		SourceFormat: format,
	}
}

type savedPointJSON struct {
	ID        string  `json:"id"`
	Type      Format  `json:"type"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// MarshalJSON writes the point in the stored document shape.
func (p SavedPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(savedPointJSON{
		ID:        p.ID,
		Type:      p.SourceFormat,
		Lat:       p.Latitude,
		Lon:       p.Longitude,
		Timestamp: p.CreatedAt.UnixMilli(),
	})
}

// UnmarshalJSON reads the stored document shape.
func (p *SavedPoint) UnmarshalJSON(b []byte) error {
	var v savedPointJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*p = SavedPoint{
		ID:           v.ID,
		SourceFormat: v.Type,
		Latitude:     v.Lat,
		Longitude:    v.Lon,
		CreatedAt:    time.UnixMilli(v.Timestamp).UTC(),
	}
	return nil
}

// Store keeps saved points. Points are only appended or cleared in bulk.
type Store interface {
	List(ctx context.Context) ([]SavedPoint, error)
	// Add stores p, or fails with ErrDuplicate when its ID is already stored.
	Add(ctx context.Context, p SavedPoint) error
	Clear(ctx context.Context) error
	Close() error
}

var (
	// ErrDriver is returned by Open for an unknown storage driver.
	ErrDriver = errors.New("unknown storage driver")
	// ErrDuplicate is returned by Store.Add for an ID that is already stored.
	ErrDuplicate = errors.New("point already stored")
)

// Open creates the store selected by the storage configuration.
func Open(cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		s, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%q: %w", cfg.Driver, ErrDriver)
}

// FeatureCollection exports points as GeoJSON, with DMS renderings of both axes.
func FeatureCollection(pts []SavedPoint) geo.FeatureCollection {
	fc := geo.NewCollection(len(pts))
	for _, p := range pts {
		fc.Add(geo.NewPoint(p.ID, p.Latitude, p.Longitude, map[string]any{
			"type":       string(p.SourceFormat),
			"created_at": p.CreatedAt.Format(time.RFC3339),
			"lat_dms":    coord.ToLatitude(p.Latitude).String(),
			"lon_dms":    coord.ToLongitude(p.Longitude).String(),
		}))
	}
	return fc
}
