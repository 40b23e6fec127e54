package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/pitchside/internal/scheduler"
	"github.com/fortuna/pitchside/internal/syncjob"
)

type fakeJob struct {
	mu       sync.Mutex
	runs     int
	failures int
	cancel   context.CancelFunc
	stopAt   int
}

func (f *fakeJob) Run(ctx context.Context, spec syncjob.JobSpec, reporter syncjob.Reporter) (syncjob.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs++
	if f.runs >= f.stopAt {
		f.cancel()
	}

	summary := syncjob.Summary{Championships: len(spec.Championships)}
	if f.runs <= f.failures {
		summary.Failed = summary.Championships
	}
	return summary, nil
}

func TestScheduler_RunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &fakeJob{cancel: cancel, stopAt: 3}

	s := scheduler.New(job, syncjob.JobSpec{Championships: []int{2}}, nil,
		scheduler.Config{Interval: time.Millisecond}, nil)

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if job.runs != 3 {
		t.Errorf("expected 3 runs, got %d", job.runs)
	}
}

func TestScheduler_TracksConsecutiveFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &fakeJob{cancel: cancel, stopAt: 2, failures: 2}

	s := scheduler.New(job, syncjob.JobSpec{Championships: []int{2, 6}}, nil,
		scheduler.Config{Interval: time.Millisecond, MaxConsecutiveFailures: 5}, nil)
	s.Start(ctx)

	if got := s.ConsecutiveFailures(); got != 2 {
		t.Errorf("expected 2 consecutive failures, got %d", got)
	}
}

func TestScheduler_SuccessResetsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &fakeJob{cancel: cancel, stopAt: 3, failures: 2}

	s := scheduler.New(job, syncjob.JobSpec{Championships: []int{2}}, nil,
		scheduler.Config{Interval: time.Millisecond}, nil)
	s.Start(ctx)

	if got := s.ConsecutiveFailures(); got != 0 {
		t.Errorf("expected failures reset after a good run, got %d", got)
	}
}
