// internal/adapter/storage/summary_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"tweetmood/internal/domain/score"
)

const summariesTable = `
	CREATE TABLE IF NOT EXISTS summaries (
		id          UUID PRIMARY KEY,
		run_id      TEXT NOT NULL,
		schema_name TEXT NOT NULL,
		file        TEXT NOT NULL,
		language    TEXT NOT NULL,
		topic_id    INTEGER NOT NULL,
		topic       TEXT NOT NULL,
		label       TEXT NOT NULL DEFAULT '',
		percentage  DOUBLE PRECISION NOT NULL DEFAULT 0,
		rows        INTEGER NOT NULL DEFAULT 0,
		empty       BOOLEAN NOT NULL DEFAULT FALSE,
		means       JSONB,
		created_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (run_id, file)
	)
`

// SummaryStore persists aggregation results in Postgres
type SummaryStore struct {
	db *pgxpool.Pool
}

// NewSummaryStore creates a new summary store
func NewSummaryStore(db *pgxpool.Pool) *SummaryStore {
	return &SummaryStore{
		db: db,
	}
}

// Connect opens and pings a connection pool
func Connect(ctx context.Context, connString string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = int32(minConns)
	poolConfig.MaxConnLifetime = maxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the summaries table if it does not exist
func (s *SummaryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, summariesTable); err != nil {
		return fmt.Errorf("error creating summaries table: %w", err)
	}
	return nil
}

// SaveSummary saves one summary of a run. Saving the same file twice within a
// run replaces the earlier row.
func (s *SummaryStore) SaveSummary(ctx context.Context, runID, schemaName string, sum score.Summary) error {
	query := `
		INSERT INTO summaries (
			id, run_id, schema_name, file, language, topic_id, topic,
			label, percentage, rows, empty, means, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (run_id, file) DO UPDATE
		SET
			schema_name = $3,
			topic = $7,
			label = $8,
			percentage = $9,
			rows = $10,
			empty = $11,
			means = $12,
			created_at = $13
	`

	meansJSON, err := json.Marshal(sum.Means)
	if err != nil {
		return fmt.Errorf("error marshaling means: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		uuid.New().String(),
		runID,
		schemaName,
		sum.File,
		sum.Language,
		sum.TopicID,
		sum.Topic,
		sum.Label,
		sum.Percentage,
		sum.Rows,
		sum.Empty,
		meansJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// LatestSummaries returns the most recent summary of every file
func (s *SummaryStore) LatestSummaries(ctx context.Context) ([]score.Summary, error) {
	query := `
		SELECT DISTINCT ON (file)
			file, language, topic_id, topic, label, percentage, rows, empty, means
		FROM summaries
		ORDER BY file, created_at DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var summaries []score.Summary
	for rows.Next() {
		var sum score.Summary
		var meansJSON []byte

		if err := rows.Scan(
			&sum.File,
			&sum.Language,
			&sum.TopicID,
			&sum.Topic,
			&sum.Label,
			&sum.Percentage,
			&sum.Rows,
			&sum.Empty,
			&meansJSON,
		); err != nil {
			return nil, fmt.Errorf("error scanning summary: %w", err)
		}

		if len(meansJSON) > 0 {
			if err := json.Unmarshal(meansJSON, &sum.Means); err != nil {
				return nil, fmt.Errorf("error unmarshaling means: %w", err)
			}
		}

		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summaries: %w", err)
	}

	return summaries, nil
}
