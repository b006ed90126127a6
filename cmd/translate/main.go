// cmd/translate/main.go

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
	"tweetmood/internal/config"
	"tweetmood/internal/domain/batch"
	"tweetmood/internal/logging"
	"tweetmood/internal/progress"
	"tweetmood/internal/service/translate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("translate: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Input must exist before anything else is set up
	in, err := batch.OpenDir(cfg.Paths.TweetsDir)
	if err != nil {
		return err
	}
	total, err := in.Lines()
	if err != nil {
		return fmt.Errorf("count lines: %w", err)
	}

	runID := uuid.NewString()
	logger.Info("translate run %s: %d lines from %s", runID, total, in.Path())

	publisher, closeEvents := events.Open(cfg.NATS, logger)
	defer closeEvents()

	client := huggingface.NewClient(cfg.HuggingFace)
	models := translate.NewModelCache(func(lang string) (translate.Model, error) {
		model := fmt.Sprintf(cfg.Translate.ModelTemplate, lang)
		logger.Debug("loading translation model %s", model)
		return huggingface.NewTranslator(client, model), nil
	})

	translator := translate.NewTranslator(models, publisher, logger, translate.Config{
		InputDir:  cfg.Paths.TweetsDir,
		OutputDir: cfg.Paths.TranslationsDir,
		RunID:     runID,
	})

	bar := progress.Start(cfg.App.Progress, total, "translate")
	logger.SetOutput(bar)
	defer logger.SetOutput(os.Stderr)
	defer bar.Finish()

	return translator.Run(ctx, bar)
}
