// internal/service/translate/translator.go

package translate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/logging"
	"tweetmood/internal/text"
)

var errNoTranslation = errors.New("no translation")

// Config holds translator configuration
type Config struct {
	InputDir  string
	OutputDir string
	RunID     string
}

// Result describes one translated batch
type Result struct {
	File       string
	Lines      int
	Translated int
	Skipped    int
}

// Translator translates collected batches into English
type Translator struct {
	models *ModelCache
	events pipeline.Publisher
	logger *logging.Logger
	config Config
}

// NewTranslator creates a new translator. events may be nil.
func NewTranslator(models *ModelCache, events pipeline.Publisher, logger *logging.Logger, cfg Config) *Translator {
	if events == nil {
		events = pipeline.NopPublisher{}
	}
	return &Translator{
		models: models,
		events: events,
		logger: logger,
		config: cfg,
	}
}

// TranslateBatch translates every line of f into a same-named file in the
// output directory. Lines that yield no translation are skipped; the source
// line number of every written line goes to the .lines sidecar. When the batch
// fails, no translation of it is left behind, including one from an earlier run.
func (t *Translator) TranslateBatch(ctx context.Context, f batch.File) (Result, error) {
	out, err := batch.EnsureDir(t.config.OutputDir)
	if err != nil {
		return Result{File: f.Name}, fmt.Errorf("translations directory: %w", err)
	}

	outPath := out.Join(f.Name)
	res, err := t.translateInto(ctx, f, outPath)
	if err != nil {
		if rmErr := batch.RemoveOutput(outPath); rmErr != nil {
			t.logger.Warn("stale translation of %s not removed: %v", f.Name, rmErr)
		}
		return res, err
	}
	return res, nil
}

func (t *Translator) translateInto(ctx context.Context, f batch.File, outPath string) (Result, error) {
	res := Result{File: f.Name}

	model, err := t.models.Get(f.Language)
	if err != nil {
		return res, err
	}

	var kept []int
	err = batch.WriteAtomic(outPath, func(w *bufio.Writer) error {
		return batch.ForEachLine(f.Path, func(n int, line string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.Lines++

			translated, err := translateLine(ctx, model, line)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res.Skipped++
				t.logger.Warn("%s line %d: %v [%s]", f.Name, n+1, err, pipeline.Classify(err))
				return nil
			}

			w.WriteString(translated)
			w.WriteByte('\n')
			kept = append(kept, n)
			res.Translated++
			return nil
		})
	})
	if err != nil {
		return res, fmt.Errorf("translate %s: %w", f.Name, err)
	}

	if err := writeLineMap(batch.LinesPath(outPath), kept); err != nil {
		return res, fmt.Errorf("line map %s: %w", f.Name, err)
	}

	return res, nil
}

// translateLine cleans a record and returns the first non-empty candidate, on one line
func translateLine(ctx context.Context, model Model, line string) (string, error) {
	cleaned := text.Clean(line)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty record", errNoTranslation)
	}

	candidates, err := model.Translate(ctx, cleaned)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", errNoTranslation)
	}

	translated := text.OneLine(candidates[0])
	if translated == "" {
		return "", fmt.Errorf("%w: empty translation", errNoTranslation)
	}
	return translated, nil
}

// writeLineMap writes one zero-based source line number per translated line
func writeLineMap(path string, kept []int) error {
	return batch.WriteAtomic(path, func(w *bufio.Writer) error {
		for _, n := range kept {
			w.WriteString(strconv.Itoa(n))
			w.WriteByte('\n')
		}
		return nil
	})
}

// ReadLineMap reads a .lines sidecar
func ReadLineMap(path string) ([]int, error) {
	var lines []int
	err := batch.ForEachLine(path, func(_ int, line string) error {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		lines = append(lines, n)
		return nil
	})
	return lines, err
}

// Run translates every batch of the input directory in name order,
// advancing counter by each batch's line count
func (t *Translator) Run(ctx context.Context, counter batch.Counter) error {
	in, err := batch.OpenDir(t.config.InputDir)
	if err != nil {
		return err
	}

	total := Result{}
	files := 0
	for f, err := range in.Walk(counter) {
		if err != nil {
			t.logger.Warn("skipping batch: %v", err)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := t.TranslateBatch(ctx, f)
		event := pipeline.Event{
			RunID:  t.config.RunID,
			Stage:  pipeline.StageTranslate,
			File:   f.Name,
			Lines:  res.Translated,
			Status: pipeline.StatusOK,
			Time:   time.Now().UTC(),
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Error("%s: %v [%s]", f.Name, err, pipeline.Classify(err))
			event.Status = pipeline.StatusFailed
			event.Error = err.Error()
		} else {
			files++
			total.Lines += res.Lines
			total.Translated += res.Translated
			total.Skipped += res.Skipped
			t.logger.Debug("%s: %d of %d lines translated", f.Name, res.Translated, res.Lines)
		}
		if err := t.events.PublishFile(event); err != nil {
			t.logger.Debug("event not published: %v", err)
		}
	}

	t.logger.Info("translated %d batches: %d lines, %d skipped", files, total.Translated, total.Skipped)
	if err := t.events.PublishCompleted(pipeline.Event{
		RunID:  t.config.RunID,
		Stage:  pipeline.StageTranslate,
		Lines:  total.Translated,
		Status: pipeline.StatusOK,
		Time:   time.Now().UTC(),
	}); err != nil {
		t.logger.Debug("event not published: %v", err)
	}

	return nil
}
