// Package tiles serves map tiles for the UI from a local WebP cache filled from
// an upstream raster tile server.
package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/geo"
)

// Style is a rendering of the base map.
type Style string

// Supported styles.
const (
	StyleLight Style = "light"
	StyleDark  Style = "dark"
)

// ParseStyle validates a style name.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleLight, StyleDark:
		return Style(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrStyle)
}

var (
	// ErrNotFound means the tile does not exist upstream or is out of range.
	ErrNotFound = errors.New("tile not found")
	// ErrStyle is returned for an unknown style name.
	ErrStyle = errors.New("unknown tile style")
)

// Cache fetches, re-encodes and stores tiles on disk.
type Cache struct {
	client      *http.Client
	urlTemplate string
	dir         string
	userAgent   string
	quality     int
	zoomLimit   int
}

// New creates a cache from the tile configuration.
func New(client *http.Client, cfg config.Tiles) *Cache {
	return &Cache{
		client:      client,
		urlTemplate: cfg.URL,
		dir:         cfg.CacheDir,
		userAgent:   cfg.UserAgent,
		quality:     cfg.Quality,
		zoomLimit:   cfg.ZoomLimit,
	}
}

// Path is where a tile is cached.
func (c *Cache) Path(style Style, t geo.TileCoordinate) string {
	return filepath.Join(
		c.dir,
		string(style),
		strconv.Itoa(t.Z),
		strconv.Itoa(t.X),
		strconv.Itoa(t.Y)+".webp")
}

// Get returns the WebP bytes of a tile, fetching it upstream on a cache miss.
func (c *Cache) Get(ctx context.Context, style Style, t geo.TileCoordinate) ([]byte, error) {
	if _, err := ParseStyle(string(style)); err != nil {
		return nil, err
	}
	if !t.Valid() || t.Z > c.zoomLimit {
		return nil, ErrNotFound
	}

	path := c.Path(style, t)
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		return data, nil
	}

	img, err := c.download(ctx, t)
	if err != nil {
		return nil, err
	}
	if style == StyleDark {
		img = Darken(img)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: float32(c.quality)}); err != nil {
		return nil, err
	}

	if err := writeFile(path, buf.Bytes()); err != nil {
		// still serve the tile, the cache is an optimization
		log.Warn().Err(err).Str("path", path).Msg("Failed to cache tile")
	}

	return buf.Bytes(), nil
}

func (c *Cache) download(ctx context.Context, t geo.TileCoordinate) (image.Image, error) {
	url := BuildURL(c.urlTemplate, t)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		log.Trace().Str("url", url).Msg("Tile not found (404)")
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	// Filter out empty/1px tiles often returned by map servers for OOB areas
	if img.Bounds().Dx() <= 1 {
		return nil, ErrNotFound
	}

	return img, nil
}

// BuildURL expands {z}, {x}, {y} and {tms_y} in a tile URL template.
func BuildURL(tpl string, c geo.TileCoordinate) string {
	s := strings.ReplaceAll(tpl, "{z}", strconv.Itoa(c.Z))
	s = strings.ReplaceAll(s, "{x}", strconv.Itoa(c.X))
	s = strings.ReplaceAll(s, "{y}", strconv.Itoa(c.Y))

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << c.Z) - 1
		s = strings.ReplaceAll(s, "{tms_y}", strconv.Itoa(maxCoord-c.Y))
	}

	return s
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
