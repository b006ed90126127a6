// cmd/classify/main.go

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
	"tweetmood/internal/adapter/huggingface"
	"tweetmood/internal/adapter/onnx"
	"tweetmood/internal/config"
	"tweetmood/internal/domain/batch"
	"tweetmood/internal/logging"
	"tweetmood/internal/progress"
	"tweetmood/internal/service/classify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("classify: %v", err)
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

	in, err := batch.OpenDir(cfg.Paths.TranslationsDir)
	if err != nil {
		return err
	}
	total, err := in.Lines()
	if err != nil {
		return fmt.Errorf("count lines: %w", err)
	}

	model, closeModel, err := newModel(cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	runID := uuid.NewString()
	logger.Info("classify run %s: %d lines, %s backend, %q labels", runID, total, cfg.Classify.Backend, schema.Name())

	publisher, closeEvents := events.Open(cfg.NATS, logger)
	defer closeEvents()

	classifier := classify.NewClassifier(model, schema, publisher, logger, classify.Config{
		InputDir:  cfg.Paths.TranslationsDir,
		OutputDir: cfg.Paths.ResultsDir,
		RunID:     runID,
	})

	bar := progress.Start(cfg.App.Progress, total, "classify")
	logger.SetOutput(bar)
	defer logger.SetOutput(os.Stderr)
	defer bar.Finish()

	return classifier.Run(ctx, bar)
}

// newModel builds the configured zero-shot backend
func newModel(cfg config.Config) (classify.Model, func(), error) {
	switch cfg.Classify.Backend {
	case config.BackendONNX:
		m, err := onnx.NewZeroShot(cfg.ONNX, cfg.Classify.MultiLabel)
		if err != nil {
			return nil, nil, fmt.Errorf("onnx backend: %w", err)
		}
		return m, func() { _ = m.Close() }, nil
	default:
		client := huggingface.NewClient(cfg.HuggingFace)
		return huggingface.NewZeroShot(client, cfg.Classify.Model, cfg.Classify.MultiLabel), func() {}, nil
	}
}
