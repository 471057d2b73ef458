package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconvert/assets"
	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/mapview"
	"github.com/woozymasta/geoconvert/internal/points"
	"github.com/woozymasta/geoconvert/internal/tiles"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config          *config.Config
	Store           points.Store
	Map             *mapview.Controller
	Tiles           *tiles.Cache
	IndexHTML       []byte
	Favicon         []byte
	TransparentTile []byte
}

// NewServerContext renders the UI, creates the map controller at the
// configured home and pins the stored points on it.
// The caller keeps ownership of store and cache; Close releases the controller.
func NewServerContext(ctx context.Context, cfg *config.Config, store points.Store, cache *tiles.Cache) (*ServerContext, error) {
	log.Info().
		Str("storage", cfg.Storage.Driver).
		Str("language", cfg.Language).
		Msg("Initializing server context")

	index, err := assets.Render()
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	favicon, err := assets.Favicon()
	if err != nil {
		return nil, fmt.Errorf("render favicon: %w", err)
	}

	home := mapview.View{
		Center: mapview.Center{Lat: cfg.Home.Lat, Lon: cfg.Home.Lon},
		Zoom:   cfg.Home.Zoom,
	}
	controller := mapview.New(home, cfg.PinZoom)

	saved, err := store.List(ctx)
	if err != nil {
		controller.Close()
		return nil, fmt.Errorf("load saved points: %w", err)
	}
	if err := controller.Load(saved); err != nil {
		controller.Close()
		return nil, err
	}

	log.Info().
		Int("saved_points", len(saved)).
		Float64("home_lat", home.Center.Lat).
		Float64("home_lon", home.Center.Lon).
		Int("home_zoom", home.Zoom).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:          cfg,
		Store:           store,
		Map:             controller,
		Tiles:           cache,
		IndexHTML:       index,
		Favicon:         favicon,
		TransparentTile: tiles.Transparent(),
	}, nil
}

// Close ends the map controller lifecycle.
func (s *ServerContext) Close() {
	s.Map.Close()
}
