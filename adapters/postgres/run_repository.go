// Package postgres archives completed analysis runs. The pipeline never
// depends on it; archival is opt-in via DATABASE_URL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// runRepository stores analysis reports as JSON documents keyed by run ID.
type runRepository struct {
	db *sqlx.DB
}

// RunRepository persists and retrieves analysis runs.
type RunRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, report *stats.AnalysisReport) error
	GetByID(ctx context.Context, id core.RunID) (*stats.AnalysisReport, error)
	ListRecent(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is the listing row for archived runs.
type RunSummary struct {
	RunID      core.RunID `db:"id" json:"run_id"`
	SourceFile string     `db:"source_file" json:"source_file"`
	SampleSize int        `db:"sample_size" json:"sample_size"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Connect opens a postgres connection pool.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

// EnsureSchema creates the runs table when it does not exist.
func (r *runRepository) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS analysis_runs (
		id          TEXT PRIMARY KEY,
		source_file TEXT NOT NULL DEFAULT '',
		sample_size INTEGER NOT NULL DEFAULT 0,
		report      JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure analysis_runs schema: %w", err)
	}
	return nil
}

// Save inserts a completed run.
func (r *runRepository) Save(ctx context.Context, report *stats.AnalysisReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `INSERT INTO analysis_runs (id, source_file, sample_size, report, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query,
		report.RunID.String(), report.SourceFile, report.SampleSize, reportJSON, report.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// GetByID retrieves an archived run by its ID.
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*stats.AnalysisReport, error) {
	query := `SELECT report FROM analysis_runs WHERE id = $1`

	var reportJSON []byte
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&reportJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	var report stats.AnalysisReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// ListRecent returns the newest archived runs.
func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, source_file, sample_size, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT $1`

	var out []RunSummary
	if err := r.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	return out, nil
}
