// cmd/api/main.go

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"tweetmood/internal/adapter/events"
	"tweetmood/internal/adapter/storage"
	"tweetmood/internal/config"
	"tweetmood/internal/domain/topic"
	"tweetmood/internal/logging"
	"tweetmood/internal/server"
	"tweetmood/internal/server/handlers"
	"tweetmood/internal/service/summarize"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	schema, err := cfg.LabelSchema()
	if err != nil {
		logger.Fatal("Invalid label schema: %v", err)
	}

	// Summaries come from the store when enabled, otherwise from the results directory
	var summaries handlers.SummarySource
	if cfg.Database.Enabled {
		db, err := storage.Connect(ctx, cfg.Database.ConnString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.MaxLifetime)
		if err != nil {
			logger.Fatal("Failed to initialize database: %v", err)
		}
		defer db.Close()

		store := storage.NewSummaryStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare database: %v", err)
		}
		summaries = handlers.SummarySourceFunc(store.LatestSummaries)
	} else {
		summarizer := summarize.NewSummarizer(topic.Default(), schema, nil, nil, logger, summarize.Config{
			ResultsDir:    cfg.Paths.ResultsDir,
			TopicLanguage: cfg.Summary.TopicLanguage,
		})
		summaries = handlers.SummarySourceFunc(summarizer.Summaries)
	}

	// The event relay is optional
	var natsConn *nats.Conn
	if cfg.NATS.Enabled() {
		natsConn, err = events.Connect(cfg.NATS, logger)
		if err != nil {
			logger.Warn("Event relay disabled: %v", err)
		} else {
			defer natsConn.Close()
		}
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.Paths, summaries, natsConn)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error: %v", err)
	}

	logger.Info("Shutdown complete")
}
