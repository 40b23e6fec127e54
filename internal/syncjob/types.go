package syncjob

import (
	"context"

	"github.com/fortuna/pitchside/internal/backend"
)

// Trigger records what started a sync run
type Trigger string

const (
	TriggerDashboard Trigger = "dashboard"
	TriggerCLI       Trigger = "cli"
)

// RunStatus is the lifecycle state of a recorded run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Championships []int
	Trigger       Trigger
	// SkipStats leaves team statistics untouched after syncing.
	SkipStats bool
	DryRun    bool
}

// Summary totals a finished run
type Summary struct {
	Championships int  `json:"championships"`
	Failed        int  `json:"failed"`
	TeamsSynced   int  `json:"teams_synced"`
	MatchesSynced int  `json:"matches_synced"`
	TeamsUpdated  int  `json:"teams_updated"`
	StatsFailed   bool `json:"stats_failed"`
}

// Status derives the final run status from the summary
func (s Summary) Status() RunStatus {
	switch {
	case s.Championships > 0 && s.Failed == s.Championships:
		return RunStatusFailed
	case s.Failed > 0 || s.StatsFailed:
		return RunStatusPartial
	default:
		return RunStatusCompleted
	}
}

// Client is the part of the backend a sync needs
type Client interface {
	SyncChampionship(ctx context.Context, championshipID int) (*backend.SyncResult, error)
	CalculateStats(ctx context.Context) (*backend.StatsResult, error)
}

// Recorder persists the audit trail of sync runs
type Recorder interface {
	StartRun(ctx context.Context, spec JobSpec) (int64, error)
	FinishRun(ctx context.Context, runID int64, summary Summary, runErr error) error
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnChampionshipSynced(championshipID int, result *backend.SyncResult)
	OnChampionshipError(championshipID int, err error)
	OnStatsCalculated(result *backend.StatsResult)
	OnStatsError(err error)
	OnJobComplete(summary Summary)
	OnJobError(err error)
}
