package syncjob

import (
	"github.com/fortuna/pitchside/internal/backend"
	"go.uber.org/zap"
)

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnChampionshipSynced(int, *backend.SyncResult) {}
func (nopReporter) OnChampionshipError(int, error) {}
func (nopReporter) OnStatsCalculated(*backend.StatsResult) {}
func (nopReporter) OnStatsError(error) {}
func (nopReporter) OnJobComplete(Summary) {}
func (nopReporter) OnJobError(error) {}

// LogReporter writes progress to a zap logger
type LogReporter struct {
	Log *zap.Logger
}

func (l LogReporter) OnJobStart(spec JobSpec) {
	l.Log.Info("starting sync",
		zap.Ints("championships", spec.Championships),
		zap.String("trigger", string(spec.Trigger)),
		zap.Bool("dry_run", spec.DryRun))
}

func (l LogReporter) OnChampionshipSynced(id int, result *backend.SyncResult) {
	l.Log.Info("synced", zap.Int("championship_id", id), zap.Int("teams", result.TeamsSynced), zap.Int("matches", result.MatchesSynced))
}

func (l LogReporter) OnChampionshipError(id int, err error) {
	l.Log.Error("sync error", zap.Int("championship_id", id), zap.Error(err))
}

func (l LogReporter) OnStatsCalculated(result *backend.StatsResult) {
	l.Log.Info("stats calculated", zap.Int("teams_updated", result.TeamsUpdated))
}

func (l LogReporter) OnStatsError(err error) {
	l.Log.Error("stats error", zap.Error(err))
}

func (l LogReporter) OnJobComplete(summary Summary) {
	l.Log.Info("sync complete",
		zap.String("status", string(summary.Status())),
		zap.Int("failed", summary.Failed),
		zap.Int("teams_synced", summary.TeamsSynced),
		zap.Int("matches_synced", summary.MatchesSynced),
		zap.Int("teams_updated", summary.TeamsUpdated))
}

func (l LogReporter) OnJobError(err error) {
	l.Log.Error("sync aborted", zap.Error(err))
}
