package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/coord"
	"github.com/woozymasta/geoconvert/internal/input"
	"github.com/woozymasta/geoconvert/internal/logger"
	"github.com/woozymasta/geoconvert/internal/points"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Storage    string `short:"s" long:"storage" env:"STORAGE_DRIVER" description:"Saved points storage driver" choice:"file" choice:"sqlite"`
	Path       string `short:"P" long:"path"    env:"STORAGE_PATH"   description:"Saved points storage path"`

	List   ListCommand   `command:"list"   description:"List saved points"`
	Add    AddCommand    `command:"add"    description:"Save a point given as decimal or DMS lat,lon"`
	Clear  ClearCommand  `command:"clear"  description:"Delete every saved point"`
	Export ExportCommand `command:"export" description:"Export saved points as GeoJSON"`
	Import ImportCommand `command:"import" description:"Import points from a stored points array, a storage dump or GeoJSON (file or URL)"`
}

var opts Options

type ListCommand struct {
	Format string `short:"f" long:"format" description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
}

type AddCommand struct {
	Args struct {
		Coordinate []string `positional-arg-name:"coordinate" required:"1"`
	} `positional-args:"yes"`
}

type ClearCommand struct {
	Yes bool `short:"y" long:"yes" description:"Confirm deleting every saved point"`
}

type ExportCommand struct {
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
}

type ImportCommand struct {
	Args struct {
		Source string `positional-arg-name:"source" required:"yes"`
	} `positional-args:"yes"`
}

var errNotConfirmed = errors.New("refusing to clear saved points without --yes")

func main() {
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		opts.Logger.Setup()
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Command failed")
	}
}

// withStore opens the configured store for the duration of fn.
func withStore(fn func(ctx context.Context, store points.Store) error) error {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Storage != "" || opts.Path != "" {
		if opts.Storage != "" && opts.Storage != cfg.Storage.Driver {
			cfg.Storage.Path = ""
			cfg.Storage.Driver = opts.Storage
		}
		if opts.Path != "" {
			cfg.Storage.Path = opts.Path
		}
		cfg.ApplyDefaults()
	}

	store, err := points.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close points storage")
		}
	}()

	log.Debug().
		Str("driver", cfg.Storage.Driver).
		Str("path", cfg.Storage.Path).
		Msg("Points storage opened")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return fn(ctx, store)
}

// Execute prints the saved points.
func (c *ListCommand) Execute(_ []string) error {
	return withStore(func(ctx context.Context, store points.Store) error {
		list, err := store.List(ctx)
		if err != nil {
			return err
		}

		switch c.Format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if list == nil {
				list = []points.SavedPoint{}
			}
			return enc.Encode(list)
		case "yaml":
			return yaml.NewEncoder(os.Stdout).Encode(yamlPoints(list))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tLAT\tLON\tDMS\tSAVED")
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%v\t%v\t%s, %s\t%s\n",
				p.ID, p.SourceFormat, p.Latitude, p.Longitude,
				coord.ToLatitude(p.Latitude), coord.ToLongitude(p.Longitude),
				p.CreatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	})
}

// Execute saves one point. Decimal input is stored as DD, DMS input as DMS.
func (c *AddCommand) Execute(_ []string) error {
	text := strings.Join(c.Args.Coordinate, " ")

	p, err := parsePoint(text)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, store points.Store) error {
		if err := store.Add(ctx, p); err != nil {
			return err
		}
		log.Info().
			Str("id", p.ID).
			Str("type", string(p.SourceFormat)).
			Float64("lat", p.Latitude).
			Float64("lon", p.Longitude).
			Msg("Point saved")
		return nil
	})
}

func parsePoint(text string) (points.SavedPoint, error) {
	if lat, lon, err := input.ParseDecimalPair(text); err == nil {
		return points.New(lat, lon, points.FormatDD), nil
	}

	lat, lon, err := input.ParseDMSPair(text)
	if err != nil {
		return points.SavedPoint{}, fmt.Errorf("not a decimal or DMS pair: %w", err)
	}
	return points.New(lat.Decimal(), lon.Decimal(), points.FormatDMS), nil
}

// Execute deletes every saved point.
func (c *ClearCommand) Execute(_ []string) error {
	if !c.Yes {
		return errNotConfirmed
	}

	return withStore(func(ctx context.Context, store points.Store) error {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		log.Info().Msg("Saved points cleared")
		return nil
	})
}

// Execute writes the saved points as a GeoJSON FeatureCollection.
func (c *ExportCommand) Execute(_ []string) error {
	return withStore(func(ctx context.Context, store points.Store) error {
		list, err := store.List(ctx)
		if err != nil {
			return err
		}

		fc := points.FeatureCollection(list)

		var data []byte
		if c.Format == "yaml" {
			data, err = yaml.Marshal(fc)
		} else {
			data, err = json.MarshalIndent(fc, "", "  ")
		}
		if err != nil {
			return err
		}

		if c.Output == "" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}

		if err := os.WriteFile(c.Output, data, 0o644); err != nil {
			return err
		}
		log.Info().
			Int("points", len(list)).
			Str("path", c.Output).
			Msg("Points exported")
		return nil
	})
}

// Execute imports points, skipping IDs that are already stored.
func (c *ImportCommand) Execute(_ []string) error {
	return withStore(func(ctx context.Context, store points.Store) error {
		client := &http.Client{Timeout: 15 * time.Second}

		pts, err := points.Fetch(ctx, client, c.Args.Source)
		if err != nil {
			return fmt.Errorf("read %s: %w", c.Args.Source, err)
		}

		added, err := points.Import(ctx, store, pts)
		if err != nil {
			return err
		}

		log.Info().
			Str("source", c.Args.Source).
			Int("read", len(pts)).
			Int("added", added).
			Msg("Points imported")
		return nil
	})
}

// yamlPoints keeps the stored field names in YAML output.
func yamlPoints(list []points.SavedPoint) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, p := range list {
		out = append(out, map[string]any{
			"id":        p.ID,
			"type":      string(p.SourceFormat),
			"lat":       p.Latitude,
			"lon":       p.Longitude,
			"timestamp": p.CreatedAt.UnixMilli(),
		})
	}
	return out
}
