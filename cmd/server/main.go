package main

import (
	"fmt"
	"os"

	"github.com/recoveryd-dev/recoveryd/internal/config"
	"github.com/recoveryd-dev/recoveryd/internal/logger"
	"github.com/recoveryd-dev/recoveryd/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration ($CONFIG_PATH, else config.yaml)
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Str("addr", srv.Addr()).Msg("Starting recoveryd server...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
