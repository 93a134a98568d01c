package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/project-tktt/dream-jobs/internal/domain"
)

// PostgresArchiver keeps one row per search response
type PostgresArchiver struct {
	db        *sql.DB
	tableName string
}

// NewPostgresArchiver creates a new PostgreSQL archiver
func NewPostgresArchiver(connStr string, tableName string) (*PostgresArchiver, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	a := &PostgresArchiver{
		db:        db,
		tableName: tableName,
	}

	if err := a.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return a, nil
}

// ensureTable creates the responses table if it doesn't exist
func (a *PostgresArchiver) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			filters JSONB,
			outcome TEXT NOT NULL,
			search_url TEXT,
			job_count INTEGER DEFAULT 0,
			jobs JSONB,
			advice TEXT,
			completed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, a.tableName)

	_, err := a.db.Exec(query)
	return err
}

// Archive upserts the response keyed by request ID
func (a *PostgresArchiver) Archive(ctx context.Context, resp *domain.SearchResponse) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, query, filters, outcome, search_url,
			job_count, jobs, advice, completed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			query = EXCLUDED.query,
			filters = EXCLUDED.filters,
			outcome = EXCLUDED.outcome,
			search_url = EXCLUDED.search_url,
			job_count = EXCLUDED.job_count,
			jobs = EXCLUDED.jobs,
			advice = EXCLUDED.advice,
			completed_at = EXCLUDED.completed_at
	`, a.tableName)

	args, err := rowArgs(resp)
	if err != nil {
		return err
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert response %s: %w", resp.ID, err)
	}
	return nil
}

// Close closes the database connection
func (a *PostgresArchiver) Close() error {
	return a.db.Close()
}

func rowArgs(resp *domain.SearchResponse) ([]any, error) {
	filters, err := json.Marshal(resp.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}
	jobs := resp.Jobs
	if jobs == nil {
		jobs = []domain.EnrichedJob{}
	}
	jobsJSON, err := json.Marshal(jobs)
	if err != nil {
		return nil, fmt.Errorf("marshal jobs: %w", err)
	}

	return []any{
		resp.ID, resp.Query, string(filters), string(resp.Outcome), resp.SearchURL,
		len(resp.Jobs), string(jobsJSON), resp.Advice, resp.CompletedAt,
	}, nil
}
