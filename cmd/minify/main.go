package main

import (
	"os"
	"path/filepath"

	"github.com/woozymasta/geoconvert/assets"
	"github.com/woozymasta/geoconvert/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Output  string `short:"o" long:"out"     description:"Output HTML file" default:"dist/index.html"`
	Favicon string `short:"i" long:"favicon" description:"Also write the minified SVG favicon to this path"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	page, err := assets.Render()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render index")
	}
	write(opts.Output, page)

	if opts.Favicon != "" {
		icon, err := assets.Favicon()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to minify favicon")
		}
		write(opts.Favicon, icon)
	}

	log.Info().Msg("Minify done")
}

func write(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create output directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write file")
	}
	log.Info().Str("path", path).Int("bytes", len(data)).Msg("File written")
}
