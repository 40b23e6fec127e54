package syncjob_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/syncjob"
	"go.uber.org/zap"
)

type fakeClient struct {
	failing   map[int]bool
	statsErr  error
	synced    []int
	statsRuns int
}

func (f *fakeClient) SyncChampionship(ctx context.Context, id int) (*backend.SyncResult, error) {
	f.synced = append(f.synced, id)
	if f.failing[id] {
		return nil, &backend.TransportError{Endpoint: backend.EndpointSync, Err: errors.New("connection refused")}
	}
	return &backend.SyncResult{TeamsSynced: 10, MatchesSynced: 100}, nil
}

func (f *fakeClient) CalculateStats(ctx context.Context) (*backend.StatsResult, error) {
	f.statsRuns++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &backend.StatsResult{TeamsUpdated: 30}, nil
}

type fakeRecorder struct {
	started  int
	finished []syncjob.Summary
	runErr   error
}

func (f *fakeRecorder) StartRun(ctx context.Context, spec syncjob.JobSpec) (int64, error) {
	f.started++
	return int64(f.started), nil
}

func (f *fakeRecorder) FinishRun(ctx context.Context, runID int64, summary syncjob.Summary, runErr error) error {
	f.finished = append(f.finished, summary)
	f.runErr = runErr
	return nil
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) OnJobStart(syncjob.JobSpec) { r.events = append(r.events, "start") }
func (r *recordingReporter) OnChampionshipSynced(int, *backend.SyncResult) {
	r.events = append(r.events, "synced")
}
func (r *recordingReporter) OnChampionshipError(int, error) { r.events = append(r.events, "champ_error") }
func (r *recordingReporter) OnStatsCalculated(*backend.StatsResult) {
	r.events = append(r.events, "stats")
}
func (r *recordingReporter) OnStatsError(error)            { r.events = append(r.events, "stats_error") }
func (r *recordingReporter) OnJobComplete(syncjob.Summary) { r.events = append(r.events, "complete") }
func (r *recordingReporter) OnJobError(error)              { r.events = append(r.events, "error") }

func TestRun_SyncsInOrderAndContinuesPastFailures(t *testing.T) {
	client := &fakeClient{failing: map[int]bool{6: true}}
	recorder := &fakeRecorder{}
	reporter := &recordingReporter{}
	runner := syncjob.NewRunner(client, recorder, zap.NewNop())

	summary, err := runner.Run(context.Background(), syncjob.JobSpec{Championships: []int{2, 6, 10}}, reporter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.synced) != 3 || client.synced[0] != 2 || client.synced[2] != 10 {
		t.Errorf("expected championships synced in order, got %v", client.synced)
	}
	if summary.Failed != 1 || summary.TeamsSynced != 20 || summary.TeamsUpdated != 30 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.Status() != syncjob.RunStatusPartial {
		t.Errorf("expected partial status, got %s", summary.Status())
	}

	want := []string{"start", "synced", "champ_error", "synced", "stats", "complete"}
	if len(reporter.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, reporter.events)
	}
	for i := range want {
		if reporter.events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], reporter.events[i])
		}
	}

	if recorder.started != 1 || len(recorder.finished) != 1 {
		t.Errorf("expected one recorded run, got started=%d finished=%d", recorder.started, len(recorder.finished))
	}
}

func TestRun_StatsFailureIsReported(t *testing.T) {
	client := &fakeClient{statsErr: errors.New("boom")}
	reporter := &recordingReporter{}
	runner := syncjob.NewRunner(client, nil, nil)

	summary, err := runner.Run(context.Background(), syncjob.JobSpec{Championships: []int{2}}, reporter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.StatsFailed {
		t.Error("expected stats failure recorded in summary")
	}
	if reporter.events[len(reporter.events)-2] != "stats_error" {
		t.Errorf("expected stats_error before completion, got %v", reporter.events)
	}
}

func TestRun_CancelledContextAborts(t *testing.T) {
	client := &fakeClient{}
	recorder := &fakeRecorder{}
	runner := syncjob.NewRunner(client, recorder, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, syncjob.JobSpec{Championships: []int{2, 6}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(client.synced) != 0 {
		t.Errorf("expected no sync calls, got %v", client.synced)
	}
	if recorder.runErr == nil {
		t.Error("expected the audit row to carry the error")
	}
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	client := &fakeClient{}
	recorder := &fakeRecorder{}
	runner := syncjob.NewRunner(client, recorder, zap.NewNop())

	if _, err := runner.Run(context.Background(), syncjob.JobSpec{Championships: []int{2}, DryRun: true}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.synced) != 0 || client.statsRuns != 0 || recorder.started != 0 {
		t.Error("expected dry run to make no calls")
	}
}

func TestSummaryStatus(t *testing.T) {
	tests := []struct {
		summary syncjob.Summary
		want    syncjob.RunStatus
	}{
		{syncjob.Summary{Championships: 3}, syncjob.RunStatusCompleted},
		{syncjob.Summary{Championships: 3, Failed: 3}, syncjob.RunStatusFailed},
		{syncjob.Summary{Championships: 3, StatsFailed: true}, syncjob.RunStatusPartial},
	}
	for _, tt := range tests {
		if got := tt.summary.Status(); got != tt.want {
			t.Errorf("%+v: expected %s, got %s", tt.summary, tt.want, got)
		}
	}
}
