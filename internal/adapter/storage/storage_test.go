package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/score"
)

// These tests run against real services and are skipped unless
// TEST_DATABASE_URL or TEST_REDIS_ADDR is set.

func TestSummaryStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, dsn, 2, 0, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewSummaryStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	file := "ru_0_" + uuid.NewString() + ".tsv"
	sum := score.Summary{File: file, Language: "ru", Topic: "wojna", Label: "support", Percentage: 90, Rows: 1,
		Means: map[string]float64{"support": 90}}
	if err := store.SaveSummary(ctx, uuid.NewString(), "war", sum); err != nil {
		t.Fatal(err)
	}

	got, err := store.LatestSummaries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range got {
		if g.File == file {
			if g.Label != "support" || g.Means["support"] != 90 {
				t.Fatalf("stored=%+v", g)
			}
			return
		}
	}
	t.Fatalf("summary %s not found", file)
}

func TestSeenStoreMarkSeen(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := ConnectRedis(ctx, config.RedisConfig{Addr: addr})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	set := "tweetmood:test:" + uuid.NewString()
	defer client.Del(ctx, set)

	s := NewSeenStore(client, set)
	if seen, err := s.Seen(ctx, "1"); err != nil || seen {
		t.Fatalf("Seen before mark=%v,%v", seen, err)
	}
	if err := s.MarkSeen(ctx, "1", "1"); err != nil {
		t.Fatal(err)
	}
	if seen, err := s.Seen(ctx, "1"); err != nil || !seen {
		t.Fatalf("Seen after mark=%v,%v", seen, err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Fatalf("Count=%d", n)
	}
}
