package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/floorplan-mcp/internal/config"
	"github.com/ironsheep/floorplan-mcp/internal/segment"
	"github.com/ironsheep/floorplan-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("floorplan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("floorplan-mcp - MCP server for floor plan store extraction")
			fmt.Println()
			fmt.Println("Usage: floorplan-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FLOORPLAN_MCP_LOG_LEVEL=debug        Log level (debug, info, warn, error)")
			fmt.Println("  FLOORPLAN_ORACLE_URL=http://...      Segmentation service; prediction is disabled when unset")
			fmt.Println("  FLOORPLAN_ORACLE_TIMEOUT=60s         Timeout for each oracle call")
			fmt.Println("  FLOORPLAN_CATALOG=plan.yaml          Category colors and label table")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Logs go to stderr; stdout is for the MCP protocol.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = logger.Level(cfg.LogLevel)
	logger.Info().Str("version", Version).Str("commit", GitCommit).Msg("starting floorplan-mcp")

	var catalog *config.Catalog
	if cfg.CatalogPath != "" {
		catalog, err = config.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load catalog")
		}
		logger.Info().Str("catalog", catalog.Name).
			Int("categories", len(catalog.Categories.Categories())).
			Int("labels", len(catalog.Labels)).
			Msg("catalog loaded")
	}

	var oracle segment.Oracle
	if cfg.OracleURL != "" {
		oracle = segment.NewHTTPOracle(cfg.OracleURL, cfg.OracleTimeout)
		logger.Info().Str("url", cfg.OracleURL).Dur("timeout", cfg.OracleTimeout).Msg("segmentation oracle configured")
	} else {
		logger.Warn().Msg("no segmentation oracle configured; prediction is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg, catalog, oracle, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
