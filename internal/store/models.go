package store

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// SyncRun is one row of the sync_runs audit table
type SyncRun struct {
	RunID         int64          `json:"run_id" db:"run_id"`
	Trigger       string         `json:"trigger" db:"trigger"`
	Championships pq.Int64Array  `json:"championships" db:"championships"`
	Status        string         `json:"status" db:"status"`
	Summary       []byte         `json:"-" db:"summary"`
	LastError     sql.NullString `json:"-" db:"last_error"`
	StartedAt     time.Time      `json:"started_at" db:"started_at"`
	CompletedAt   sql.NullTime   `json:"-" db:"completed_at"`
}
