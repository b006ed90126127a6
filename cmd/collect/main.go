// cmd/collect/main.go

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"tweetmood/internal/adapter/events"
	"tweetmood/internal/adapter/storage"
	"tweetmood/internal/adapter/twitter"
	"tweetmood/internal/config"
	"tweetmood/internal/domain/topic"
	"tweetmood/internal/logging"
	"tweetmood/internal/progress"
	"tweetmood/internal/service/collect"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateCollector(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("collect: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	logger.Info("collect run %s: %s mode into %s", runID, cfg.Collect.Mode, cfg.Paths.TweetsDir)

	publisher, closeEvents := events.Open(cfg.NATS, logger)
	defer closeEvents()

	// Seen-tweet dedupe only matters when appending
	var seen collect.SeenStore
	if cfg.Collect.Mode == config.CollectResume && cfg.Collect.Dedupe && cfg.Redis.Enabled() {
		client, err := storage.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("dedupe disabled: %v", err)
		} else {
			defer client.Close()
			seen = storage.NewSeenStore(client, cfg.Redis.SeenSet)
		}
	}

	catalog := topic.Default()
	collector := collect.NewCollector(
		twitter.NewSearcher(cfg.Twitter, cfg.Collect.MaxResults),
		seen,
		publisher,
		catalog,
		logger,
		collect.Config{
			Dir:   cfg.Paths.TweetsDir,
			Mode:  cfg.Collect.Mode,
			RunID: runID,
		},
	)

	bar := progress.Start(cfg.App.Progress, catalog.Len(), "collect")
	logger.SetOutput(bar)
	defer logger.SetOutput(os.Stderr)
	defer bar.Finish()

	return collector.Run(ctx, bar)
}
