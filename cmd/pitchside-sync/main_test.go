package main

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/pitchside/internal/syncjob"
	"go.uber.org/zap"
)

func TestBuildSpec(t *testing.T) {
	spec, err := buildSpec(" 2, 6 ,10,", true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Championships) != 3 || spec.Championships[0] != 2 || spec.Championships[2] != 10 {
		t.Errorf("expected [2 6 10], got %v", spec.Championships)
	}
	if spec.Trigger != syncjob.TriggerCLI {
		t.Errorf("expected cli trigger, got %s", spec.Trigger)
	}
	if !spec.SkipStats || spec.DryRun {
		t.Errorf("expected flags to carry through, got %+v", spec)
	}
}

func TestBuildSpec_Invalid(t *testing.T) {
	for _, input := range []string{"", " , ", "2,abc", "0", "-3"} {
		if _, err := buildSpec(input, false, false); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestJoinIDs(t *testing.T) {
	if got := joinIDs([]int{2, 6, 10}); got != "2,6,10" {
		t.Errorf("expected 2,6,10, got %s", got)
	}
	if got := joinIDs(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

type fakeSummaries struct {
	trigger syncjob.Trigger
	summary syncjob.Summary
	calls   int
	err     error
}

func (f *fakeSummaries) PublishSyncSummary(ctx context.Context, trigger syncjob.Trigger, summary syncjob.Summary) error {
	f.calls++
	f.trigger = trigger
	f.summary = summary
	return f.err
}

func TestCLIReporter_PublishesSummary(t *testing.T) {
	pub := &fakeSummaries{}
	r := &cliReporter{LogReporter: syncjob.LogReporter{Log: zap.NewNop()}, trigger: syncjob.TriggerCLI, summaries: pub}

	r.OnJobComplete(syncjob.Summary{Championships: 3, TeamsSynced: 40})

	if pub.calls != 1 {
		t.Fatalf("expected 1 publish, got %d", pub.calls)
	}
	if pub.trigger != syncjob.TriggerCLI || pub.summary.TeamsSynced != 40 {
		t.Errorf("unexpected publish: %s %+v", pub.trigger, pub.summary)
	}

	pub.err = errors.New("redis down")
	r.OnJobComplete(syncjob.Summary{})
	if pub.calls != 2 {
		t.Errorf("expected publish failure to be tolerated, got %d calls", pub.calls)
	}
}

func TestCLIReporter_WithoutPublisher(t *testing.T) {
	r := &cliReporter{LogReporter: syncjob.LogReporter{Log: zap.NewNop()}}
	r.OnJobComplete(syncjob.Summary{})
}
