package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/geo"
	"github.com/woozymasta/geoconvert/internal/logger"
	"github.com/woozymasta/geoconvert/internal/points"
	"github.com/woozymasta/geoconvert/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Styles      []string `short:"s" long:"style"       env:"TILE_STYLES" env-delim:"," description:"Tile styles to prefetch" choice:"light" choice:"dark" default:"light"`
	Zooms       []int    `short:"z" long:"zoom"        env:"ZOOMS" env-delim:"," description:"Zoom levels to prefetch (default: home and pin zoom)"`
	Radius      int      `short:"r" long:"radius"      env:"RADIUS"      description:"Tiles around each point" default:"2"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"8"`
	NoPoints    bool     `short:"n" long:"no-points"   description:"Prefetch around home only, skip saved points"`
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	centers := []config.View{cfg.Home}
	if !opts.NoPoints {
		saved, err := loadPoints(ctx, cfg.Storage)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load saved points, prefetching home only")
		}
		for _, p := range saved {
			centers = append(centers, config.View{Lat: p.Latitude, Lon: p.Longitude})
		}
	}

	zooms := opts.Zooms
	if len(zooms) == 0 {
		zooms = []int{cfg.Home.Zoom, cfg.PinZoom}
	}

	coords := collectTiles(centers, zooms, opts.Radius, cfg.Tiles.ZoomLimit)

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 15 * time.Second,
	}
	cache := tiles.New(client, cfg.Tiles)

	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	log.Info().
		Int("centers", len(centers)).
		Ints("zooms", zooms).
		Int("tiles_queued", len(coords)).
		Strs("styles", opts.Styles).
		Msg("Starting loader")

	for _, name := range opts.Styles {
		style, err := tiles.ParseStyle(name)
		if err != nil {
			log.Error().Err(err).Msg("Skipping style")
			continue
		}

		start := time.Now()
		cached := cache.Prefetch(ctx, style, coords, opts.Concurrency)

		log.Info().
			Str("style", string(style)).
			Int("cached", len(cached)).
			Int("missing", len(coords)-len(cached)).
			Dur("duration", time.Since(start)).
			Msg("Style prefetched")
	}

	if ctx.Err() != nil {
		log.Warn().Msg("Loader interrupted")
		return
	}
	log.Info().Msg("Loader finished successfully")
}

func loadPoints(ctx context.Context, cfg config.Storage) ([]points.SavedPoint, error) {
	store, err := points.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	return store.List(ctx)
}

// collectTiles returns the unique tiles around every center at every zoom.
func collectTiles(centers []config.View, zooms []int, radius, zoomLimit int) []geo.TileCoordinate {
	seen := make(map[geo.TileCoordinate]bool)
	var out []geo.TileCoordinate

	for _, z := range zooms {
		if z < 0 || z > zoomLimit {
			log.Warn().Int("zoom", z).Int("zoom_limit", zoomLimit).Msg("Zoom out of range, skipped")
			continue
		}
		for _, c := range centers {
			for _, t := range geo.TilesAround(c.Lon, c.Lat, z, radius) {
				if seen[t] {
					continue
				}
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	return out
}
