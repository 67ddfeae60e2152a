// Package storage persists selection history in Postgres so articles
// selected in earlier runs can be excluded from later ones.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ContentAgent/internal/domain"
	"ContentAgent/internal/ports"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresHistory implements the selection history repository.
type PostgresHistory struct {
	db           *sql.DB
	lookbackDays int
	builder      sq.StatementBuilderType
}

var _ ports.HistoryRepository = (*PostgresHistory)(nil)

// NewPostgresHistory wires a sql.DB with the lookback window in days. A
// non-positive lookback keeps recorded URLs excluded forever.
func NewPostgresHistory(db *sql.DB, lookbackDays int) *PostgresHistory {
	return &PostgresHistory{
		db:           db,
		lookbackDays: lookbackDays,
		builder:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the history table when it does not exist yet.
func (r *PostgresHistory) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS selected_articles (
            url           TEXT PRIMARY KEY,
            run_id        TEXT NOT NULL,
            source        TEXT NOT NULL,
            title         TEXT NOT NULL,
            score_overall DOUBLE PRECISION NOT NULL,
            selected_at   TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// PreviouslySelected returns the subset of urls recorded within the
// lookback window.
func (r *PostgresHistory) PreviouslySelected(ctx context.Context, urls []string) (map[string]bool, error) {
	if r.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query := r.builder.
		Select("url").
		From("selected_articles").
		Where(sq.Expr("url = ANY(?)", pq.Array(urls)))
	if r.lookbackDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -r.lookbackDays)
		query = query.Where(sq.GtOrEq{"selected_at": cutoff})
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveSelected upserts one row per candidate under the given run id.
// Candidates arrive deduplicated, so each URL appears at most once per
// batch.
func (r *PostgresHistory) SaveSelected(ctx context.Context, runID string, candidates []domain.Candidate) error {
	if r.db == nil || len(candidates) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("selected_articles").
		Columns("url", "run_id", "source", "title", "score_overall", "selected_at")
	for _, candidate := range candidates {
		insert = insert.Values(
			candidate.CanonicalURL,
			runID,
			candidate.Source,
			candidate.Title,
			candidate.ScoreOverall,
			candidate.CollectedAt,
		)
	}
	insert = insert.Suffix(`ON CONFLICT (url) DO UPDATE
        SET run_id = EXCLUDED.run_id,
            score_overall = EXCLUDED.score_overall,
            selected_at = EXCLUDED.selected_at`)

	sqlText, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build history insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlText, args...); err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}

	return nil
}
