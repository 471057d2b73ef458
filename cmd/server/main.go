package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/logger"
	"github.com/woozymasta/geoconvert/internal/points"
	"github.com/woozymasta/geoconvert/internal/server"
	"github.com/woozymasta/geoconvert/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"   env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"     env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"     env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Storage    string `short:"s" long:"storage"  env:"STORAGE_DRIVER" description:"Saved points storage driver" choice:"file" choice:"sqlite"`
	Language   string `short:"l" long:"language" env:"LANGUAGE"       description:"Default UI language"        choice:"ID" choice:"EN"`
}

func main() {
	envErr := godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Failed to load .env file")
	}

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.ConfigFile).Msg("Failed to load configuration")
	}
	if opts.Storage != "" && opts.Storage != cfg.Storage.Driver {
		cfg.Storage = config.Storage{Driver: opts.Storage}
		cfg.ApplyDefaults()
	}
	if opts.Language != "" {
		cfg.Language = opts.Language
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := points.Open(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open points storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close points storage")
		}
	}()

	client := &http.Client{Timeout: 15 * time.Second}
	cache := tiles.New(client, cfg.Tiles)

	srvCtx, err := server.NewServerContext(ctx, cfg, store, cache)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return
	}
	defer srvCtx.Close()

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info().
		Str("addr", listenAddr).
		Str("storage", cfg.Storage.Driver).
		Str("tiles", cfg.Tiles.CacheDir).
		Int("zoom_limit", cfg.Tiles.ZoomLimit).
		Msg("Web server started")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
		}
		return
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
