// cmd/summarize/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"tweetmood/internal/adapter/events"
	"tweetmood/internal/adapter/storage"
	"tweetmood/internal/config"
	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/topic"
	"tweetmood/internal/logging"
	"tweetmood/internal/progress"
	"tweetmood/internal/service/summarize"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("summarize: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schema, err := cfg.LabelSchema()
	if err != nil {
		return err
	}

	in, err := batch.OpenDir(cfg.Paths.ResultsDir)
	if err != nil {
		return err
	}
	total, err := in.Lines()
	if err != nil {
		return fmt.Errorf("count lines: %w", err)
	}

	runID := uuid.NewString()

	publisher, closeEvents := events.Open(cfg.NATS, logger)
	defer closeEvents()

	// Persisting summaries is optional; a store failure never blocks the report
	var store summarize.Store
	if cfg.Database.Enabled {
		db, err := storage.Connect(ctx, cfg.Database.ConnString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.MaxLifetime)
		if err != nil {
			logger.Warn("summary store disabled: %v", err)
		} else {
			defer db.Close()
			summaryStore := storage.NewSummaryStore(db)
			if err := summaryStore.EnsureSchema(ctx); err != nil {
				logger.Warn("summary store disabled: %v", err)
			} else {
				store = summaryStore
			}
		}
	}

	summarizer := summarize.NewSummarizer(topic.Default(), schema, store, publisher, logger, summarize.Config{
		ResultsDir:    cfg.Paths.ResultsDir,
		TopicLanguage: cfg.Summary.TopicLanguage,
		RunID:         runID,
	})

	bar := progress.Start(cfg.App.Progress, total, "summarize")
	logger.SetOutput(bar)
	defer logger.SetOutput(os.Stderr)
	defer bar.Finish()

	_, err = summarizer.Run(ctx, bar, progress.Above(bar, os.Stdout))
	return err
}
