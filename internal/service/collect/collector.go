// internal/service/collect/collector.go

package collect

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/topic"
	"tweetmood/internal/logging"
)

// Searcher runs one bounded search query
type Searcher interface {
	Search(ctx context.Context, query string) ([]topic.Tweet, error)
}

// SeenStore remembers tweet ids across runs
type SeenStore interface {
	Seen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, ids ...string) error
}

// Config holds collector configuration
type Config struct {
	Dir   string
	Mode  string
	RunID string
}

// Collector fetches tweets for every catalog topic into batch files
type Collector struct {
	searcher Searcher
	seen     SeenStore
	events   pipeline.Publisher
	catalog  *topic.Catalog
	logger   *logging.Logger
	config   Config
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// NewCollector creates a new collector. seen and events may be nil.
func NewCollector(
	searcher Searcher,
	seen SeenStore,
	events pipeline.Publisher,
	catalog *topic.Catalog,
	logger *logging.Logger,
	cfg Config,
) *Collector {
	if events == nil {
		events = pipeline.NopPublisher{}
	}
	if cfg.Mode == "" {
		cfg.Mode = config.CollectOverwrite
	}

	return &Collector{
		searcher: searcher,
		seen:     seen,
		events:   events,
		catalog:  catalog,
		logger:   logger,
		config:   cfg,
	}
}

// FetchTopic runs the search for one topic and writes its batch file.
// On any failure nothing is written and an existing file is left as-is.
func (c *Collector) FetchTopic(ctx context.Context, t topic.Topic) (int, error) {
	dir, err := batch.EnsureDir(c.config.Dir)
	if err != nil {
		return 0, fmt.Errorf("tweets directory: %w", err)
	}

	tweets, err := c.searcher.Search(ctx, t.SearchQuery())
	if err != nil {
		return 0, err
	}

	lines := make([]string, 0, len(tweets))
	var ids []string
	batchIDs := make(map[string]bool, len(tweets))
	for _, tw := range tweets {
		if c.config.Mode == config.CollectResume {
			if batchIDs[tw.ID] || !c.isNew(ctx, tw) {
				continue
			}
			if tw.ID != "" {
				batchIDs[tw.ID] = true
				ids = append(ids, tw.ID)
			}
		}
		lines = append(lines, newlines.Replace(tw.Text))
	}

	path := dir.Join(batch.Name(t.Language, t.ID))
	if c.config.Mode == config.CollectResume {
		if len(lines) == 0 {
			return 0, nil
		}
		if err := batch.AppendLines(path, lines); err != nil {
			return 0, fmt.Errorf("append %s: %w", path, err)
		}
		// Ids are recorded only once their lines are on disk
		if c.seen != nil {
			if err := c.seen.MarkSeen(ctx, ids...); err != nil {
				c.logger.Warn("seen store: %v", err)
			}
		}
		return len(lines), nil
	}

	err = batch.WriteAtomic(path, func(w *bufio.Writer) error {
		for _, l := range lines {
			w.WriteString(l)
			w.WriteByte('\n')
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}

	return len(lines), nil
}

// isNew reports whether a tweet has not been collected before. Store errors
// keep the tweet.
func (c *Collector) isNew(ctx context.Context, tw topic.Tweet) bool {
	if c.seen == nil || tw.ID == "" {
		return true
	}

	seen, err := c.seen.Seen(ctx, tw.ID)
	if err != nil {
		c.logger.Warn("seen store: %v", err)
		return true
	}
	return !seen
}

// Run collects every topic, language by language, advancing counter by one per topic
func (c *Collector) Run(ctx context.Context, counter batch.Counter) error {
	collected, failed := 0, 0

	for t := range c.catalog.All() {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := batch.Name(t.Language, t.ID)
		n, err := c.FetchTopic(ctx, t)

		event := pipeline.Event{
			RunID:  c.config.RunID,
			Stage:  pipeline.StageCollect,
			File:   name,
			Lines:  n,
			Status: pipeline.StatusOK,
			Time:   time.Now().UTC(),
		}
		if err != nil {
			failed++
			c.logger.Warn("could not fetch tweets for '%s' (%s): %v [%s]", t.Query, name, err, pipeline.Classify(err))
			event.Status = pipeline.StatusFailed
			event.Error = err.Error()
		} else {
			collected += n
			c.logger.Debug("collected %d tweets into %s", n, name)
		}
		c.publish(event, false)

		if counter != nil {
			counter.Add(1)
		}
	}

	c.logger.Info("collected %d tweets, %d topics failed", collected, failed)
	c.publish(pipeline.Event{
		RunID:  c.config.RunID,
		Stage:  pipeline.StageCollect,
		Lines:  collected,
		Status: pipeline.StatusOK,
		Time:   time.Now().UTC(),
	}, true)

	return nil
}

func (c *Collector) publish(e pipeline.Event, completed bool) {
	var err error
	if completed {
		err = c.events.PublishCompleted(e)
	} else {
		err = c.events.PublishFile(e)
	}
	if err != nil {
		c.logger.Debug("event not published: %v", err)
	}
}
