// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Home     View    `yaml:"home" json:"home"`
	Storage  Storage `yaml:"storage" json:"-"`
	Tiles    Tiles   `yaml:"tiles" json:"-"`
	Language string  `yaml:"language,omitempty" json:"language"`
	PinZoom  int     `yaml:"pin_zoom,omitempty" json:"pin_zoom"`
}

// View is a map center and zoom level.
type View struct {
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
	Zoom int     `yaml:"zoom,omitempty" json:"zoom"`
}

// Storage selects where saved points live.
type Storage struct {
	Driver string `yaml:"driver,omitempty"` // file or sqlite
	Path   string `yaml:"path,omitempty"`
}

// Tiles configures the map tile cache.
type Tiles struct {
	URL       string `yaml:"url,omitempty"` // upstream template with {z}, {x}, {y}
	CacheDir  string `yaml:"cache_dir,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
	Quality   int    `yaml:"quality,omitempty"`
	ZoomLimit int    `yaml:"zoom,omitempty"`
}

// Defaults returns the configuration used when no file is present.
// Home defaults to Jakarta.
func Defaults() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its default.
func (c *Config) ApplyDefaults() {
	if c.Home == (View{}) {
		c.Home = View{Lat: -6.2088, Lon: 106.8456}
	}
	if c.Home.Zoom <= 0 {
		c.Home.Zoom = 12
	}
	if c.PinZoom <= 0 {
		c.PinZoom = 16
	}
	if c.Language == "" {
		c.Language = "ID"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "points.json"
		if c.Storage.Driver == "sqlite" {
			c.Storage.Path = "points.db"
		}
	}

	if c.Tiles.URL == "" {
		c.Tiles.URL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	}
	if c.Tiles.CacheDir == "" {
		c.Tiles.CacheDir = "tiles"
	}
	if c.Tiles.UserAgent == "" {
		c.Tiles.UserAgent = "geoconvert/1.0"
	}
	if c.Tiles.Quality <= 0 || c.Tiles.Quality > 100 {
		c.Tiles.Quality = 80
	}
	if c.Tiles.ZoomLimit <= 0 {
		c.Tiles.ZoomLimit = 19
	}
}
