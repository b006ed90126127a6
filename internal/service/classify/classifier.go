// internal/service/classify/classifier.go

package classify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/label"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/score"
	"tweetmood/internal/logging"
	"tweetmood/internal/text"
)

// Model scores a text against candidate labels
type Model interface {
	Classify(ctx context.Context, text string, labels []string) (map[string]float64, error)
}

// Config holds classifier configuration
type Config struct {
	InputDir  string
	OutputDir string
	RunID     string
}

// Classifier turns translated batches into score files
type Classifier struct {
	model  Model
	schema label.Schema
	events pipeline.Publisher
	logger *logging.Logger
	config Config
}

// NewClassifier creates a new classifier. events may be nil.
func NewClassifier(model Model, schema label.Schema, events pipeline.Publisher, logger *logging.Logger, cfg Config) *Classifier {
	if events == nil {
		events = pipeline.NopPublisher{}
	}
	return &Classifier{
		model:  model,
		schema: schema,
		events: events,
		logger: logger,
		config: cfg,
	}
}

// ClassifyBatch writes one score row per line of f, columns in canonical label
// order. Any failure aborts the file and leaves no score file, not even one
// from an earlier run.
func (c *Classifier) ClassifyBatch(ctx context.Context, f batch.File) (int, error) {
	out, err := batch.EnsureDir(c.config.OutputDir)
	if err != nil {
		return 0, fmt.Errorf("results directory: %w", err)
	}

	outPath := out.Join(f.Name)
	rows, err := c.classifyInto(ctx, f, outPath)
	if err != nil {
		if rmErr := batch.RemoveOutput(outPath); rmErr != nil {
			c.logger.Warn("stale scores for %s not removed: %v", f.Name, rmErr)
		}
		return 0, err
	}
	return rows, nil
}

func (c *Classifier) classifyInto(ctx context.Context, f batch.File, outPath string) (int, error) {
	labels := c.schema.Labels()
	rows := 0

	err := batch.WriteAtomic(outPath, func(w *bufio.Writer) error {
		return batch.ForEachLine(f.Path, func(n int, line string) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			scores, err := c.model.Classify(ctx, text.Clean(line), labels)
			if err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}

			row, err := score.FromMapping(scores, c.schema)
			if err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}

			w.WriteString(row.Format())
			w.WriteByte('\n')
			rows++
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("classify %s: %w", f.Name, err)
	}

	if err := copyLineMap(batch.LinesPath(f.Path), batch.LinesPath(outPath)); err != nil {
		return 0, fmt.Errorf("line map %s: %w", f.Name, err)
	}

	return rows, nil
}

// copyLineMap copies a .lines sidecar when the source has one, and removes a
// stale copy when it does not
func copyLineMap(src, dst string) error {
	in, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}
	defer in.Close()

	return batch.WriteAtomic(dst, func(w *bufio.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// prepareOutput creates the results directory and records the label schema.
// A results directory written with another schema is rejected.
func (c *Classifier) prepareOutput() error {
	out, err := batch.EnsureDir(c.config.OutputDir)
	if err != nil {
		return fmt.Errorf("results directory: %w", err)
	}

	existing, found, err := label.ReadFile(out.Path())
	if err != nil {
		return err
	}
	if found && !existing.Equal(c.schema) {
		return fmt.Errorf("%s holds scores for schema %q, configured %q: %w",
			out.Path(), existing.Name(), c.schema.Name(), pipeline.ErrSchemaMismatch)
	}

	return label.WriteFile(out.Path(), c.schema)
}

// Run classifies every translated batch in name order, advancing counter by
// each batch's line count
func (c *Classifier) Run(ctx context.Context, counter batch.Counter) error {
	in, err := batch.OpenDir(c.config.InputDir)
	if err != nil {
		return err
	}
	if err := c.prepareOutput(); err != nil {
		return err
	}

	files, failed, rows := 0, 0, 0
	for f, err := range in.Walk(counter) {
		if err != nil {
			c.logger.Warn("skipping batch: %v", err)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := c.ClassifyBatch(ctx, f)
		event := pipeline.Event{
			RunID:  c.config.RunID,
			Stage:  pipeline.StageClassify,
			File:   f.Name,
			Lines:  n,
			Status: pipeline.StatusOK,
			Time:   time.Now().UTC(),
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			c.logger.Error("%v [%s]", err, pipeline.Classify(err))
			event.Status = pipeline.StatusFailed
			event.Error = err.Error()
		} else {
			files++
			rows += n
		}
		if err := c.events.PublishFile(event); err != nil {
			c.logger.Debug("event not published: %v", err)
		}
	}

	c.logger.Info("classified %d batches (%d rows), %d failed", files, rows, failed)
	if err := c.events.PublishCompleted(pipeline.Event{
		RunID:  c.config.RunID,
		Stage:  pipeline.StageClassify,
		Lines:  rows,
		Status: pipeline.StatusOK,
		Time:   time.Now().UTC(),
	}); err != nil {
		c.logger.Debug("event not published: %v", err)
	}

	return nil
}
