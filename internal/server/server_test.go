package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/score"
	"tweetmood/internal/server/handlers"
)

func newTestServer(t *testing.T, source handlers.SummarySource) (*httptest.Server, config.PathsConfig) {
	t.Helper()
	root := t.TempDir()
	paths := config.PathsConfig{
		TweetsDir:       filepath.Join(root, "tweets"),
		TranslationsDir: filepath.Join(root, "translations"),
		ResultsDir:      filepath.Join(root, "results"),
	}
	srv := NewServer(config.ServerConfig{CorsOrigins: []string{"*"}}, paths, source, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, paths
}

func get(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	if code := get(t, ts.URL+"/api/health", nil); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
}

func TestListSummaries(t *testing.T) {
	source := handlers.SummarySourceFunc(func(context.Context) ([]score.Summary, error) {
		return []score.Summary{
			{File: "pl_0.tsv", Language: "pl", Topic: "wojna", Label: "support", Percentage: 90, Rows: 1},
			{File: "ru_0.tsv", Language: "ru", Topic: "wojna", Empty: true},
		}, nil
	})
	ts, _ := newTestServer(t, source)

	var all []map[string]interface{}
	if code := get(t, ts.URL+"/api/v1/summaries", &all); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if len(all) != 2 || all[0]["line"] != "'wojna' feels 90.0% 'support'" {
		t.Fatalf("summaries=%v", all)
	}

	var ru []map[string]interface{}
	get(t, ts.URL+"/api/v1/summaries?lang=ru", &ru)
	if len(ru) != 1 || ru[0]["line"] != "'wojna' has no data" {
		t.Fatalf("filtered=%v", ru)
	}
}

func TestListSummariesNoResults(t *testing.T) {
	source := handlers.SummarySourceFunc(func(context.Context) ([]score.Summary, error) {
		return nil, pipeline.ErrDirMissing
	})
	ts, _ := newTestServer(t, source)
	if code := get(t, ts.URL+"/api/v1/summaries", nil); code != http.StatusNotFound {
		t.Fatalf("status=%d", code)
	}
}

func TestListBatches(t *testing.T) {
	ts, paths := newTestServer(t, nil)

	var empty []map[string]interface{}
	if code := get(t, ts.URL+"/api/v1/batches/collect", &empty); code != http.StatusOK || len(empty) != 0 {
		t.Fatalf("missing dir: status=%d body=%v", code, empty)
	}

	os.MkdirAll(paths.TweetsDir, 0o755)
	os.WriteFile(filepath.Join(paths.TweetsDir, "ru_1.tsv"), []byte("a\nb\n"), 0o644)
	os.WriteFile(filepath.Join(paths.TweetsDir, "ru_1.tsv.lines"), []byte("0\n"), 0o644)

	var batches []struct {
		Name     string `json:"name"`
		Language string `json:"language"`
		TopicID  int    `json:"topic_id"`
		Lines    int    `json:"lines"`
	}
	get(t, ts.URL+"/api/v1/batches/collect", &batches)
	if len(batches) != 1 || batches[0].Name != "ru_1.tsv" || batches[0].Lines != 2 || batches[0].TopicID != 1 {
		t.Fatalf("batches=%+v", batches)
	}

	if code := get(t, ts.URL+"/api/v1/batches/nope", nil); code != http.StatusNotFound {
		t.Fatalf("unknown stage status=%d", code)
	}
}

func TestEventsWithoutNATS(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	if code := get(t, ts.URL+"/ws/events", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", code)
	}
}
