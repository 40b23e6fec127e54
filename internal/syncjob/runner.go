package syncjob

import (
	"context"
	"fmt"

	"github.com/fortuna/pitchside/internal/metrics"
	"go.uber.org/zap"
)

// Runner syncs championships from the data provider through the backend,
// then recomputes team statistics.
type Runner struct {
	client   Client
	recorder Recorder
	log      *zap.Logger
}

// NewRunner constructs a runner. recorder may be nil when no audit store is configured.
func NewRunner(client Client, recorder Recorder, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		client:   client,
		recorder: recorder,
		log:      log,
	}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
// A championship that fails to sync is reported and skipped; only context
// cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (Summary, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	summary := Summary{Championships: len(spec.Championships)}

	if spec.DryRun {
		r.log.Info("dry run, nothing synced", zap.Ints("championships", spec.Championships))
		reporter.OnJobComplete(summary)
		return summary, nil
	}

	runID := r.startRun(ctx, spec)

	err := r.run(ctx, spec, reporter, &summary)

	r.finishRun(runID, summary, err)

	status := summary.Status()
	if err != nil {
		status = RunStatusFailed
	}
	metrics.SyncRunFinished(string(spec.Trigger), string(status))

	if err != nil {
		reporter.OnJobError(err)
		return summary, err
	}

	reporter.OnJobComplete(summary)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, spec JobSpec, reporter Reporter, summary *Summary) error {
	for idx, id := range spec.Championships {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync cancelled before championship %d: %w", id, err)
		}

		result, err := r.client.SyncChampionship(ctx, id)
		if err != nil {
			summary.Failed++
			r.log.Warn("championship sync failed",
				zap.Int("championship_id", id),
				zap.Int("index", idx+1),
				zap.Int("total", len(spec.Championships)),
				zap.Error(err))
			reporter.OnChampionshipError(id, err)
			continue
		}

		summary.TeamsSynced += result.TeamsSynced
		summary.MatchesSynced += result.MatchesSynced
		r.log.Info("championship synced",
			zap.Int("championship_id", id),
			zap.Int("teams", result.TeamsSynced),
			zap.Int("matches", result.MatchesSynced))
		reporter.OnChampionshipSynced(id, result)
	}

	if spec.SkipStats {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sync cancelled before stats: %w", err)
	}

	stats, err := r.client.CalculateStats(ctx)
	if err != nil {
		summary.StatsFailed = true
		r.log.Warn("calculate stats failed", zap.Error(err))
		reporter.OnStatsError(err)
		return nil
	}

	summary.TeamsUpdated = stats.TeamsUpdated
	reporter.OnStatsCalculated(stats)
	return nil
}

func (r *Runner) startRun(ctx context.Context, spec JobSpec) int64 {
	if r.recorder == nil {
		return 0
	}
	id, err := r.recorder.StartRun(ctx, spec)
	if err != nil {
		r.log.Warn("failed to record sync start", zap.Error(err))
		return 0
	}
	return id
}

func (r *Runner) finishRun(runID int64, summary Summary, runErr error) {
	if r.recorder == nil || runID == 0 {
		return
	}
	// The request context may already be cancelled; the audit row still gets closed.
	if err := r.recorder.FinishRun(context.Background(), runID, summary, runErr); err != nil {
		r.log.Warn("failed to record sync result", zap.Int64("run_id", runID), zap.Error(err))
	}
}
