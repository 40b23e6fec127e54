package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fortuna/pitchside/internal/store"
	"github.com/fortuna/pitchside/internal/syncjob"
	"github.com/lib/pq"
)

const defaultRecentRuns = 20

// SyncRunRepository handles sync run audit rows
type SyncRunRepository struct {
	db *store.Database
}

// NewSyncRunRepository creates a new sync run repository
func NewSyncRunRepository(db *store.Database) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// StartRun inserts a running row and returns its id
func (r *SyncRunRepository) StartRun(ctx context.Context, spec syncjob.JobSpec) (int64, error) {
	query := `
		INSERT INTO sync_runs (trigger, championships, status, started_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING run_id
	`

	var runID int64
	err := r.db.DB().QueryRowContext(ctx, query,
		string(spec.Trigger), championshipArray(spec.Championships), string(syncjob.RunStatusRunning),
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("inserting sync run: %w", err)
	}

	return runID, nil
}

// FinishRun stores the summary and final status of a run
func (r *SyncRunRepository) FinishRun(ctx context.Context, runID int64, summary syncjob.Summary, runErr error) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	status := summary.Status()
	var lastError sql.NullString
	if runErr != nil {
		status = syncjob.RunStatusFailed
		lastError = sql.NullString{String: runErr.Error(), Valid: true}
	}

	query := `
		UPDATE sync_runs
		SET status = $2, summary = $3, last_error = $4, completed_at = NOW()
		WHERE run_id = $1
	`

	res, err := r.db.DB().ExecContext(ctx, query, runID, string(status), payload, lastError)
	if err != nil {
		return fmt.Errorf("updating sync run %d: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sync run %d not found", runID)
	}

	return nil
}

// RecentRuns returns the latest runs, newest first
func (r *SyncRunRepository) RecentRuns(ctx context.Context, limit int) ([]*store.SyncRun, error) {
	if limit <= 0 {
		limit = defaultRecentRuns
	}

	query := `
		SELECT run_id, trigger, championships, status, summary, last_error,
			started_at, completed_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.SyncRun
	for rows.Next() {
		run := &store.SyncRun{}
		err := rows.Scan(
			&run.RunID, &run.Trigger, &run.Championships, &run.Status,
			&run.Summary, &run.LastError, &run.StartedAt, &run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func championshipArray(ids []int) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
