package summarize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/batch"
	"tweetmood/internal/domain/label"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/score"
	"tweetmood/internal/domain/topic"
	"tweetmood/internal/logging"
	"tweetmood/internal/progress"
	"tweetmood/internal/service/classify"
	"tweetmood/internal/service/translate"
)

func warSchema(t *testing.T) label.Schema {
	t.Helper()
	s, err := label.ByName(label.WarEmotions)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func row(values ...float64) string {
	return score.Row(values).Format() + "\n"
}

func TestSummarizeBatchTopicLanguage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ru_0.tsv"), row(0, 0, 0, 0, 0, 0, 0, 0, 0, 1))
	f, _ := batch.NewFile(filepath.Join(dir, "ru_0.tsv"))

	pl := NewSummarizer(topic.Default(), warSchema(t), nil, nil, logging.NewDiscard(), Config{ResultsDir: dir})
	sum, err := pl.SummarizeBatch(f)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Topic != "wojna" {
		t.Fatalf("topic=%q", sum.Topic)
	}

	src := NewSummarizer(topic.Default(), warSchema(t), nil, nil, logging.NewDiscard(),
		Config{ResultsDir: dir, TopicLanguage: config.TopicLanguageSource})
	sum, err = src.SummarizeBatch(f)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Topic != "война" {
		t.Fatalf("topic=%q", sum.Topic)
	}
}

func TestSummarizeBatchEmptyAndWidth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pl_1.tsv"), "")
	writeFile(t, filepath.Join(dir, "pl_2.tsv"), "0.1\t0.2\n")
	s := NewSummarizer(topic.Default(), warSchema(t), nil, nil, logging.NewDiscard(), Config{ResultsDir: dir})

	f, _ := batch.NewFile(filepath.Join(dir, "pl_1.tsv"))
	sum, err := s.SummarizeBatch(f)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Empty || !strings.HasSuffix(sum.String(), "has no data") {
		t.Fatalf("summary=%+v", sum)
	}

	f, _ = batch.NewFile(filepath.Join(dir, "pl_2.tsv"))
	if _, err := s.SummarizeBatch(f); !errors.Is(err, pipeline.ErrRowWidth) {
		t.Fatalf("err=%v", err)
	}
}

func TestTieGoesToLowestLabel(t *testing.T) {
	dir := t.TempDir()
	s := warSchema(t)
	joy, _ := s.Index("joy")
	support, _ := s.Index("support")

	r := make([]float64, s.Len())
	r[joy], r[support] = 0.5, 0.5
	writeFile(t, filepath.Join(dir, "pl_0.tsv"), row(r...))

	sm := NewSummarizer(topic.Default(), s, nil, nil, logging.NewDiscard(), Config{ResultsDir: dir})
	f, _ := batch.NewFile(filepath.Join(dir, "pl_0.tsv"))
	sum, err := sm.SummarizeBatch(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.String(); got != "'wojna' feels 50.0% 'joy'" {
		t.Fatalf("String=%q", got)
	}
}

func TestRunRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	simple, _ := label.ByName(label.SimpleEmotions)
	if err := label.WriteFile(dir, simple); err != nil {
		t.Fatal(err)
	}

	s := NewSummarizer(topic.Default(), warSchema(t), nil, nil, logging.NewDiscard(), Config{ResultsDir: dir})
	if _, err := s.Run(context.Background(), nil, &bytes.Buffer{}); !errors.Is(err, pipeline.ErrSchemaMismatch) {
		t.Fatalf("err=%v", err)
	}
}

type memoryStore struct {
	saved []score.Summary
	runID string
}

func (m *memoryStore) SaveSummary(_ context.Context, runID, _ string, s score.Summary) error {
	m.runID = runID
	m.saved = append(m.saved, s)
	return nil
}

type countingPublisher struct{ files, completed int }

func (c *countingPublisher) PublishFile(pipeline.Event) error      { c.files++; return nil }
func (c *countingPublisher) PublishCompleted(pipeline.Event) error { c.completed++; return nil }

func TestRunPrintsStoresAndContinues(t *testing.T) {
	dir := t.TempDir()
	s := warSchema(t)
	ones := make([]float64, s.Len())
	ones[0] = 1
	writeFile(t, filepath.Join(dir, "pl_0.tsv"), row(ones...)+row(ones...))
	writeFile(t, filepath.Join(dir, "pl_1.tsv"), "1\t2\n")
	writeFile(t, filepath.Join(dir, "pl_2.tsv"), "")

	store := &memoryStore{}
	pub := &countingPublisher{}
	sm := NewSummarizer(topic.Default(), s, store, pub, logging.NewDiscard(), Config{ResultsDir: dir, RunID: "run-1"})

	var out bytes.Buffer
	counter := &progress.Nop{}
	sums, err := sm.Run(context.Background(), counter, &out)
	if err != nil {
		t.Fatal(err)
	}

	want := "'wojna' feels 100.0% 'criticicism'\n'" + mustTopic(t, 2) + "' has no data\n"
	if out.String() != want {
		t.Fatalf("output=%q want %q", out.String(), want)
	}
	if len(sums) != 2 || len(store.saved) != 2 || store.runID != "run-1" {
		t.Fatalf("sums=%d saved=%d run=%q", len(sums), len(store.saved), store.runID)
	}
	if pub.files != 3 || pub.completed != 1 {
		t.Fatalf("events=%+v", pub)
	}
	if counter.Total != 3 {
		t.Fatalf("progress=%d", counter.Total)
	}
}

func mustTopic(t *testing.T, id int) string {
	t.Helper()
	tp, ok := topic.Default().Lookup("pl", id)
	if !ok {
		t.Fatalf("no pl topic %d", id)
	}
	return tp.Query
}

// indexModel scores the i-th canonical label with i/10
type indexModel struct{ schema label.Schema }

func (m indexModel) Classify(_ context.Context, _ string, labels []string) (map[string]float64, error) {
	out := make(map[string]float64, len(labels))
	for _, l := range labels {
		i, _ := m.schema.Index(l)
		out[l] = float64(i) / 10
	}
	return out, nil
}

type dictModel map[string]string

func (d dictModel) Translate(_ context.Context, text string) ([]string, error) {
	if v, ok := d[text]; ok {
		return []string{v}, nil
	}
	return nil, fmt.Errorf("no translation for %q", text)
}

func runPipeline(t *testing.T, tweets map[string]string, factory translate.ModelFactory, model classify.Model, schema label.Schema) (string, string) {
	t.Helper()
	root := t.TempDir()
	tweetsDir := filepath.Join(root, "tweets")
	translationsDir := filepath.Join(root, "translations")
	resultsDir := filepath.Join(root, "results")
	for name, content := range tweets {
		writeFile(t, filepath.Join(tweetsDir, name), content)
	}

	ctx := context.Background()
	logger := logging.NewDiscard()

	tr := translate.NewTranslator(translate.NewModelCache(factory), nil, logger,
		translate.Config{InputDir: tweetsDir, OutputDir: translationsDir})
	if err := tr.Run(ctx, nil); err != nil {
		t.Fatal(err)
	}

	cl := classify.NewClassifier(model, schema, nil, logger,
		classify.Config{InputDir: translationsDir, OutputDir: resultsDir})
	if err := cl.Run(ctx, nil); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	sm := NewSummarizer(topic.Default(), schema, nil, nil, logger, Config{ResultsDir: resultsDir})
	if _, err := sm.Run(ctx, nil, &out); err != nil {
		t.Fatal(err)
	}
	return out.String(), resultsDir
}

func TestPipelineEndToEnd(t *testing.T) {
	s := warSchema(t)
	factory := func(string) (translate.Model, error) { return dictModel{"война": "war"}, nil }

	out, _ := runPipeline(t, map[string]string{"ru_0.tsv": "война\n"}, factory, indexModel{schema: s}, s)
	if out != "'wojna' feels 90.0% 'support'\n" {
		t.Fatalf("output=%q", out)
	}
}

func TestPipelinePreservesLineCount(t *testing.T) {
	s := warSchema(t)
	const k = 7

	var b strings.Builder
	for i := 0; i < k; i++ {
		fmt.Fprintf(&b, "tweet number %d\n", i)
	}
	factory := func(string) (translate.Model, error) { return translate.Identity{}, nil }

	_, results := runPipeline(t, map[string]string{"pl_3.tsv": b.String()}, factory, indexModel{schema: s}, s)

	n, err := batch.CountLines(filepath.Join(results, "pl_3.tsv"))
	if err != nil {
		t.Fatal(err)
	}
	if n != k {
		t.Fatalf("rows=%d want %d", n, k)
	}

	err = batch.ForEachLine(filepath.Join(results, "pl_3.tsv"), func(_ int, line string) error {
		_, err := score.ParseRow(line, s.Len())
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSummariesHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	s := warSchema(t)
	writeFile(t, filepath.Join(dir, "pl_0.tsv"), row(make([]float64, s.Len())...))

	store := &memoryStore{}
	sm := NewSummarizer(topic.Default(), s, store, nil, logging.NewDiscard(), Config{ResultsDir: dir})
	sums, err := sm.Summaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || len(store.saved) != 0 {
		t.Fatalf("sums=%d saved=%d", len(sums), len(store.saved))
	}
	// All zero: tie across every label goes to the first one
	if sums[0].Label != "criticicism" {
		t.Fatalf("label=%q", sums[0].Label)
	}
}
