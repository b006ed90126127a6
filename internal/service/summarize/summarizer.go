// internal/service/summarize/summarizer.go

package summarize

import (
	"context"
	"fmt"
	"io"
	"time"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/label"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/score"
	"tweetmood/internal/domain/topic"
	"tweetmood/internal/logging"
)

// Store persists summaries
type Store interface {
	SaveSummary(ctx context.Context, runID, schemaName string, s score.Summary) error
}

// Config holds aggregator configuration
type Config struct {
	ResultsDir string

	// TopicLanguage is the catalog language used to name topics, or
	// config.TopicLanguageSource for the batch's own language
	TopicLanguage string
	RunID         string
}

// Summarizer aggregates score files into one summary per batch
type Summarizer struct {
	catalog *topic.Catalog
	schema  label.Schema
	store   Store
	events  pipeline.Publisher
	logger  *logging.Logger
	config  Config
}

// NewSummarizer creates a new summarizer. store and events may be nil.
func NewSummarizer(
	catalog *topic.Catalog,
	schema label.Schema,
	store Store,
	events pipeline.Publisher,
	logger *logging.Logger,
	cfg Config,
) *Summarizer {
	if events == nil {
		events = pipeline.NopPublisher{}
	}
	if cfg.TopicLanguage == "" {
		cfg.TopicLanguage = "pl"
	}

	return &Summarizer{
		catalog: catalog,
		schema:  schema,
		store:   store,
		events:  events,
		logger:  logger,
		config:  cfg,
	}
}

// topicFor names the topic of a batch
func (s *Summarizer) topicFor(f batch.File) (topic.Topic, error) {
	lang := s.config.TopicLanguage
	if lang == config.TopicLanguageSource {
		lang = f.Language
	}

	t, ok := s.catalog.Lookup(lang, f.TopicID)
	if !ok {
		return topic.Topic{}, fmt.Errorf("no topic %d for language %s: %w", f.TopicID, lang, pipeline.ErrInvalidInput)
	}
	return t, nil
}

// SummarizeBatch averages every column of a score file and picks the label
// with the highest mean
func (s *Summarizer) SummarizeBatch(f batch.File) (score.Summary, error) {
	t, err := s.topicFor(f)
	if err != nil {
		return score.Summary{}, err
	}

	sum := score.Summary{
		File:     f.Name,
		Language: f.Language,
		TopicID:  f.TopicID,
		Topic:    t.Query,
	}

	acc := score.NewAccumulator(s.schema.Len())
	err = batch.ForEachLine(f.Path, func(n int, line string) error {
		row, err := score.ParseRow(line, s.schema.Len())
		if err != nil {
			return fmt.Errorf("%s line %d: %w", f.Name, n+1, err)
		}
		acc.Add(row)
		return nil
	})
	if err != nil {
		return score.Summary{}, err
	}

	sum.Rows = acc.Rows()
	means, ok := acc.Means()
	if !ok {
		sum.Empty = true
		return sum, nil
	}

	sum.Label, sum.Percentage = score.Best(means, s.schema)
	sum.Means = score.MeansByLabel(means, s.schema)
	return sum, nil
}

// CheckSchema verifies a labels.schema sidecar in the results directory, if
// any, matches the configured schema
func (s *Summarizer) CheckSchema() error {
	got, found, err := label.ReadFile(s.config.ResultsDir)
	if err != nil {
		return err
	}
	if found && !got.Equal(s.schema) {
		return fmt.Errorf("results written with schema %q %v, configured %q %v: %w",
			got.Name(), got.Labels(), s.schema.Name(), s.schema.Labels(), pipeline.ErrSchemaMismatch)
	}
	return nil
}

// Summaries computes the summary of every score file without side effects.
// Files that cannot be summarized are logged and left out.
func (s *Summarizer) Summaries(ctx context.Context) ([]score.Summary, error) {
	dir, err := batch.OpenDir(s.config.ResultsDir)
	if err != nil {
		return nil, err
	}
	if err := s.CheckSchema(); err != nil {
		return nil, err
	}

	var out []score.Summary
	for f, err := range dir.Files() {
		if err != nil {
			s.logger.Warn("skipping batch: %v", err)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sum, err := s.SummarizeBatch(f)
		if err != nil {
			s.logger.Warn("%v [%s]", err, pipeline.Classify(err))
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// Run summarizes every score file in name order, printing one line per file
// to w and advancing counter by each file's line count
func (s *Summarizer) Run(ctx context.Context, counter batch.Counter, w io.Writer) ([]score.Summary, error) {
	dir, err := batch.OpenDir(s.config.ResultsDir)
	if err != nil {
		return nil, err
	}
	if err := s.CheckSchema(); err != nil {
		return nil, err
	}

	var summaries []score.Summary
	failed := 0
	for f, err := range dir.Walk(counter) {
		if err != nil {
			s.logger.Warn("skipping batch: %v", err)
			continue
		}
		if err := ctx.Err(); err != nil {
			return summaries, err
		}

		event := pipeline.Event{
			RunID:  s.config.RunID,
			Stage:  pipeline.StageSummarize,
			File:   f.Name,
			Status: pipeline.StatusOK,
			Time:   time.Now().UTC(),
		}

		sum, err := s.SummarizeBatch(f)
		if err != nil {
			failed++
			s.logger.Error("%v [%s]", err, pipeline.Classify(err))
			event.Status = pipeline.StatusFailed
			event.Error = err.Error()
			s.publishFile(event)
			continue
		}

		fmt.Fprintln(w, sum.String())
		summaries = append(summaries, sum)

		if s.store != nil {
			if err := s.store.SaveSummary(ctx, s.config.RunID, s.schema.Name(), sum); err != nil {
				s.logger.Warn("summary of %s not stored: %v", f.Name, err)
			}
		}

		event.Lines = sum.Rows
		event.Summary = map[string]interface{}{
			"topic":      sum.Topic,
			"label":      sum.Label,
			"percentage": sum.Percentage,
			"empty":      sum.Empty,
		}
		s.publishFile(event)
	}

	s.logger.Info("summarized %d batches, %d failed", len(summaries), failed)
	if err := s.events.PublishCompleted(pipeline.Event{
		RunID:  s.config.RunID,
		Stage:  pipeline.StageSummarize,
		Lines:  len(summaries),
		Status: pipeline.StatusOK,
		Time:   time.Now().UTC(),
	}); err != nil {
		s.logger.Debug("event not published: %v", err)
	}

	return summaries, nil
}

func (s *Summarizer) publishFile(e pipeline.Event) {
	if err := s.events.PublishFile(e); err != nil {
		s.logger.Debug("event not published: %v", err)
	}
}
