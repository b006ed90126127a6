// internal/adapter/storage/seen_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tweetmood/internal/config"
)

// SeenStore remembers collected tweet ids in a Redis set
type SeenStore struct {
	client  *redis.Client
	seenSet string
}

// ConnectRedis establishes a connection to Redis
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewSeenStore creates a new seen-tweet store
func NewSeenStore(client *redis.Client, seenSet string) *SeenStore {
	return &SeenStore{
		client:  client,
		seenSet: seenSet,
	}
}

// Seen reports whether id was recorded by an earlier run
func (s *SeenStore) Seen(ctx context.Context, id string) (bool, error) {
	seen, err := s.client.SIsMember(ctx, s.seenSet, id).Result()
	if err != nil {
		return false, fmt.Errorf("error checking seen set: %w", err)
	}
	return seen, nil
}

// MarkSeen records ids as collected
func (s *SeenStore) MarkSeen(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, s.seenSet, members...).Err(); err != nil {
		return fmt.Errorf("error adding to seen set: %w", err)
	}
	return nil
}

// Count returns the number of ids in the seen set
func (s *SeenStore) Count(ctx context.Context) (int64, error) {
	count, err := s.client.SCard(ctx, s.seenSet).Result()
	if err != nil {
		return 0, fmt.Errorf("error getting seen count: %w", err)
	}
	return count, nil
}
