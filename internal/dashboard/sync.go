package dashboard

import (
	"context"
	"fmt"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/syncjob"
)

// Sync pulls the configured championships from the data provider,
// recomputes statistics and reloads teams, matches and the dashboard.
func (c *Controller) Sync(ctx context.Context) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	c.notes.Info(msgSyncStarted)

	spec := syncjob.JobSpec{
		Championships: c.cfg.Championships,
		Trigger:       syncjob.TriggerDashboard,
	}
	if _, err := c.runner.Run(ctx, spec, toastReporter{notes: c.notes}); err != nil {
		c.fail(msgSyncFailed, err)
		return err
	}

	if err := c.reload(ctx); err != nil {
		c.notes.Error(msgReloadFailed)
		return nil
	}

	c.notes.Success(msgSyncDone)
	return nil
}

// reload refreshes teams, matches and the dashboard after a sync. Each
// loader only logs its failure; the first error is returned.
func (c *Controller) reload(ctx context.Context) error {
	var first error
	quiet := func(message string, err error) {
		c.logFailure(message, err)
		if first == nil {
			first = err
		}
	}

	_ = c.loadTeams(ctx, quiet)
	_ = c.loadMatches(ctx, quiet)
	_ = c.loadDashboard(ctx, quiet)
	return first
}

// toastReporter turns sync progress into toasts.
// Championship failures are left to the runner's log.
type toastReporter struct {
	notes *notify.Center
}

func (toastReporter) OnJobStart(syncjob.JobSpec)     {}
func (toastReporter) OnChampionshipError(int, error) {}
func (toastReporter) OnJobComplete(syncjob.Summary)  {}
func (toastReporter) OnJobError(error)               {}

func (r toastReporter) OnChampionshipSynced(id int, result *backend.SyncResult) {
	r.notes.Success(fmt.Sprintf(msgSyncChampionship, id, result.TeamsSynced, result.MatchesSynced))
}

func (r toastReporter) OnStatsCalculated(result *backend.StatsResult) {
	r.notes.Success(fmt.Sprintf(msgStatsCalculated, result.TeamsUpdated))
}

func (r toastReporter) OnStatsError(error) {
	r.notes.Error(msgStatsFailed)
}
