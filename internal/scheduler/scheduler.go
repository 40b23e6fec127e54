package scheduler

import (
	"context"
	"time"

	"github.com/fortuna/pitchside/internal/syncjob"
	"go.uber.org/zap"
)

// Job runs one sync; *syncjob.Runner satisfies it
type Job interface {
	Run(ctx context.Context, spec syncjob.JobSpec, reporter syncjob.Reporter) (syncjob.Summary, error)
}

// Config holds scheduler configuration
type Config struct {
	Interval time.Duration
	// MaxConsecutiveFailures slows the schedule once this many runs in a row fail.
	MaxConsecutiveFailures int
	// Backoff is added to the wait while the failure threshold is exceeded.
	Backoff time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Interval:               time.Hour,
		MaxConsecutiveFailures: 3,
		Backoff:                15 * time.Minute,
	}
}

// Scheduler repeats a championship sync on a fixed interval
type Scheduler struct {
	job      Job
	spec     syncjob.JobSpec
	reporter syncjob.Reporter
	config   Config
	log      *zap.Logger

	consecutiveFailures int
}

// New creates a scheduler for spec. A zero Interval or MaxConsecutiveFailures takes the default.
func New(job Job, spec syncjob.JobSpec, reporter syncjob.Reporter, config Config, log *zap.Logger) *Scheduler {
	defaults := DefaultConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.MaxConsecutiveFailures <= 0 {
		config.MaxConsecutiveFailures = defaults.MaxConsecutiveFailures
	}
	if config.Backoff < 0 {
		config.Backoff = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		job:      job,
		spec:     spec,
		reporter: reporter,
		config:   config,
		log:      log,
	}
}

// Start runs the sync immediately and then on every interval until ctx ends
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Ints("championships", s.spec.Championships))

	for {
		s.runOnce(ctx)
		if ctx.Err() != nil {
			s.log.Info("sync scheduler stopped")
			return
		}

		wait := s.config.Interval
		if s.consecutiveFailures >= s.config.MaxConsecutiveFailures {
			wait += s.config.Backoff
			s.log.Warn("high failure rate, slowing schedule",
				zap.Int("consecutive_failures", s.consecutiveFailures),
				zap.Duration("next_in", wait))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("sync scheduler stopped")
			return
		case <-timer.C:
		}
	}
}

// ConsecutiveFailures reports how many runs in a row did not complete
func (s *Scheduler) ConsecutiveFailures() int {
	return s.consecutiveFailures
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.job.Run(ctx, s.spec, s.reporter)
	if err != nil || summary.Status() == syncjob.RunStatusFailed {
		s.consecutiveFailures++
		return
	}
	s.consecutiveFailures = 0
}
