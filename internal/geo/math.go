package geo

import (
	"fmt"
	"math"
)

// MaxLat is the latitude limit of the Web Mercator projection.
const MaxLat = 85.05112878

// TileCoordinate represents a specific slippy map tile.
type TileCoordinate struct {
	Z, X, Y int
}

func (c TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Valid reports whether the tile exists at its zoom level.
func (c TileCoordinate) Valid() bool {
	if c.Z < 0 || c.Z > 30 {
		return false
	}
	n := 1 << c.Z
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}

// LonLatToTile returns the tile containing the point at the given zoom.
//
// It maps longitude [-180, 180] to x [0, 2^z) and applies the forward
// Mercator projection for latitude, clamped to ±MaxLat.
func LonLatToTile(lon, lat float64, zoom int) TileCoordinate {
	if lat > MaxLat {
		lat = MaxLat
	} else if lat < -MaxLat {
		lat = -MaxLat
	}

	n := float64(int(1) << zoom)
	x := int(math.Floor((lon + 180.0) / 360.0 * n))

	latRad := lat * math.Pi / 180.0
	mercatorY := math.Log(math.Tan(latRad) + 1/math.Cos(latRad))
	y := int(math.Floor((1.0 - mercatorY/math.Pi) / 2.0 * n))

	return clampTile(TileCoordinate{Z: zoom, X: x, Y: y})
}

// TileToLonLat returns the north-west corner of a tile.
func TileToLonLat(c TileCoordinate) (lon, lat float64) {
	n := float64(int(1) << c.Z)
	lon = float64(c.X)/n*360.0 - 180.0

	mercatorY := math.Pi * (1 - 2*float64(c.Y)/n)
	lat = math.Atan(math.Sinh(mercatorY)) * 180.0 / math.Pi

	return lon, lat
}

// TilesAround returns the square of tiles of the given radius centered on the
// tile containing the point. Tiles outside the world are skipped; x wraps.
func TilesAround(lon, lat float64, zoom, radius int) []TileCoordinate {
	center := LonLatToTile(lon, lat, zoom)
	n := 1 << zoom

	seen := make(map[TileCoordinate]bool)
	out := make([]TileCoordinate, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		y := center.Y + dy
		if y < 0 || y >= n {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := ((center.X+dx)%n + n) % n
			c := TileCoordinate{Z: zoom, X: x, Y: y}
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}

	return out
}

func clampTile(c TileCoordinate) TileCoordinate {
	n := 1 << c.Z
	c.X = min(max(c.X, 0), n-1)
	c.Y = min(max(c.Y, 0), n-1)
	return c
}
