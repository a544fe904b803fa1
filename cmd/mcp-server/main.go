package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/config"
	"github.com/patient-summary-mcp-server/internal/domain"
	"github.com/patient-summary-mcp-server/internal/mcp"
	"github.com/patient-summary-mcp-server/internal/review"
	"github.com/patient-summary-mcp-server/internal/service"
	"github.com/patient-summary-mcp-server/internal/store"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg)

	// Build the bundle source
	source, err := buildBundleSource(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create bundle source: %v", err)
	}

	// Create the summarization engine
	engine := service.NewSummarizer(source, service.Options{
		TopDiagnoses:   cfg.Summary.TopDiagnoses,
		TopLabFindings: cfg.Summary.TopLabFindings,
	}, logger)

	// Create the review store
	reviews, err := review.NewSQLiteStore(cfg.Review.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to create review store: %v", err)
	}
	defer reviews.Close()

	// Create MCP server
	mcpServer := mcp.NewServer(engine, reviews, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down MCP server")
		cancel()
	}()

	// Run MCP server over stdio
	if err := mcpServer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server failed: %v", err)
	}

	logger.Info("Patient summary MCP server stopped")
}

// newLogger builds the process logger. Output goes to stderr so stdout stays
// reserved for the MCP stdio transport.
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// buildBundleSource creates the file store, wrapped in a Redis read-through
// layer when the distributed cache is enabled.
func buildBundleSource(cfg *config.Config, logger *logrus.Logger) (domain.BundleSource, error) {
	fileStore, err := store.NewFileStore(cfg.Bundles.Dir, cfg.Bundles.CacheSize, logger)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return fileStore, nil
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	return store.NewRedisCache(fileStore, client, cfg.Cache.TTL, logger), nil
}
