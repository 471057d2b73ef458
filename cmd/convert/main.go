package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/geoconvert/internal/coord"
	"github.com/woozymasta/geoconvert/internal/geo"
	"github.com/woozymasta/geoconvert/internal/input"
	"github.com/woozymasta/geoconvert/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	To      string `short:"t" long:"to"      env:"CONVERT_TO"     description:"Target notation: dd takes DMS strings, dms takes decimal lat,lon pairs" choice:"dd" choice:"dms" default:"dd"`
	Input   string `short:"i" long:"in"      description:"Input file path, one coordinate per line. Reads from stdin if empty and no arguments are given"`
	Output  string `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Format  string `short:"f" long:"format"  env:"CONVERT_FORMAT" description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
	GeoJSON bool   `short:"g" long:"geojson" description:"Write a GeoJSON FeatureCollection of the converted pairs"`

	Args struct {
		Values []string `positional-arg-name:"coordinate"`
	} `positional-args:"yes"`
}

// Result is one converted input line.
type Result struct {
	Lat    *float64 `json:"lat,omitempty"     yaml:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"     yaml:"lon,omitempty"`
	Input  string   `json:"input"             yaml:"input"`
	LatDMS string   `json:"lat_dms,omitempty" yaml:"lat_dms,omitempty"`
	LonDMS string   `json:"lon_dms,omitempty" yaml:"lon_dms,omitempty"`
	Error  string   `json:"error,omitempty"   yaml:"error,omitempty"`
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

	lines, err := readLines(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	results := make([]Result, 0, len(lines))
	failed := 0
	for _, line := range lines {
		var r Result
		if opts.To == "dms" {
			r = toDMS(line)
		} else {
			r = toDD(line)
		}
		if r.Error != "" {
			failed++
			log.Warn().Str("input", line).Str("error", r.Error).Msg("Failed to convert")
		}
		results = append(results, r)
	}

	data, err := render(opts, results)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal output")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
		}
		log.Info().
			Int("converted", len(results)-failed).
			Int("failed", failed).
			Str("path", opts.Output).
			Msg("Conversion done")
	} else {
		_, _ = os.Stdout.Write(data)
	}

	if failed > 0 {
		os.Exit(2)
	}
}

func readLines(opts Options) ([]string, error) {
	if len(opts.Args.Values) > 0 && opts.Input == "" {
		return opts.Args.Values, nil
	}

	var r io.Reader = os.Stdin
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	return lines, sc.Err()
}

// toDD converts a DMS angle or a DMS lat,lon pair.
func toDD(line string) Result {
	r := Result{Input: line}

	if !input.IsPair(line) {
		a, err := input.ParseDMS(line)
		if err != nil {
			r.Error = err.Error()
			return r
		}
		v := a.Decimal()
		if a.Axis == coord.Longitude {
			r.Lon, r.LonDMS = &v, a.String()
		} else {
			r.Lat, r.LatDMS = &v, a.String()
		}
		return r
	}

	lat, lon, err := input.ParseDMSPair(line)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	latDD, lonDD := lat.Decimal(), lon.Decimal()
	r.Lat, r.Lon = &latDD, &lonDD
	r.LatDMS, r.LonDMS = lat.String(), lon.String()

	return r
}

// toDMS converts a decimal lat,lon pair.
func toDMS(line string) Result {
	r := Result{Input: line}

	lat, lon, err := input.ParseDecimalPair(line)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Lat, r.Lon = &lat, &lon
	r.LatDMS = coord.ToLatitude(lat).String()
	r.LonDMS = coord.ToLongitude(lon).String()

	return r
}

func render(opts Options, results []Result) ([]byte, error) {
	if opts.GeoJSON {
		fc := geo.NewCollection(len(results))
		for i, r := range results {
			if r.Lat == nil || r.Lon == nil {
				continue
			}
			fc.Add(geo.NewPoint(fmt.Sprint(i+1), *r.Lat, *r.Lon, map[string]any{
				"input":   r.Input,
				"lat_dms": r.LatDMS,
				"lon_dms": r.LonDMS,
			}))
		}
		if opts.Format == "yaml" {
			return yaml.Marshal(fc)
		}
		return json.MarshalIndent(fc, "", "  ")
	}

	switch opts.Format {
	case "json":
		return json.MarshalIndent(results, "", "  ")
	case "yaml":
		return yaml.Marshal(results)
	}

	var b strings.Builder
	for _, r := range results {
		b.WriteString(textLine(opts.To, r))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func textLine(to string, r Result) string {
	if r.Error != "" {
		return "error: " + r.Error
	}

	if to == "dms" {
		return r.LatDMS + ", " + r.LonDMS
	}

	var parts []string
	if r.Lat != nil {
		parts = append(parts, fmt.Sprint(*r.Lat))
	}
	if r.Lon != nil {
		parts = append(parts, fmt.Sprint(*r.Lon))
	}
	return strings.Join(parts, ", ")
}
