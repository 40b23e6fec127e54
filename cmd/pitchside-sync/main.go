package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/config"
	"github.com/fortuna/pitchside/internal/logging"
	"github.com/fortuna/pitchside/internal/publisher"
	"github.com/fortuna/pitchside/internal/scheduler"
	"github.com/fortuna/pitchside/internal/store"
	"github.com/fortuna/pitchside/internal/store/repository"
	"github.com/fortuna/pitchside/internal/syncjob"
	"go.uber.org/zap"
)

const (
	appName    = "pitchside-sync"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		championships = flag.String("championships", joinIDs(cfg.Sync.Championships), "Comma-separated championship IDs to sync")
		backendURL    = flag.String("backend-url", cfg.Backend.BaseURL, "Analysis backend API root")
		dsn           = flag.String("dsn", cfg.DatabaseDSN, "Postgres DSN for the sync audit trail (empty disables)")
		redisURL      = flag.String("redis-url", cfg.RedisURL, "Redis URL for sync summaries (empty disables)")
		skipStats     = flag.Bool("skip-stats", false, "Do not recalculate team statistics")
		dryRun        = flag.Bool("dry-run", false, "Print the plan without calling the backend")
		every         = flag.Duration("every", 0, "Repeat the sync on this interval until interrupted")
	)
	flag.Parse()

	log, err := logging.New(appName, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting", zap.String("version", appVersion))

	spec, err := buildSpec(*championships, *skipStats, *dryRun)
	if err != nil {
		log.Fatal("invalid arguments", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder syncjob.Recorder
	if *dsn != "" && !spec.DryRun {
		db, err := store.NewDatabase(*dsn, log.Named("store"))
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
		recorder = repository.NewSyncRunRepository(db)
	}

	reporter := &cliReporter{LogReporter: syncjob.LogReporter{Log: log}, trigger: spec.Trigger}
	if *redisURL != "" && !spec.DryRun {
		pub, err := publisher.NewRedisPublisher(*redisURL)
		if err != nil {
			log.Warn("redis unavailable, summaries will not be published", zap.Error(err))
		} else {
			defer pub.Close()
			reporter.summaries = pub
		}
	}

	client := backend.New(backend.Config{
		BaseURL:      *backendURL,
		Timeout:      cfg.Backend.Timeout,
		SyncInterval: cfg.Sync.Interval,
	})
	runner := syncjob.NewRunner(client, recorder, log.Named("sync"))

	if *every > 0 {
		sched := scheduler.New(runner, spec, reporter, scheduler.Config{Interval: *every}, log.Named("scheduler"))
		sched.Start(ctx)
		log.Info("scheduler stopped")
		return
	}

	summary, err := runner.Run(ctx, spec, reporter)
	if err != nil {
		log.Fatal("sync failed", zap.Error(err))
	}
	if summary.Status() == syncjob.RunStatusFailed {
		log.Error("every championship failed to sync")
		os.Exit(1)
	}
}

// buildSpec parses the championship list into a CLI job spec
func buildSpec(championships string, skipStats, dryRun bool) (syncjob.JobSpec, error) {
	spec := syncjob.JobSpec{
		Trigger:   syncjob.TriggerCLI,
		SkipStats: skipStats,
		DryRun:    dryRun,
	}

	for _, part := range strings.Split(championships, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return spec, fmt.Errorf("invalid championship id %q", part)
		}
		spec.Championships = append(spec.Championships, id)
	}

	if len(spec.Championships) == 0 {
		return spec, errors.New("specify at least one championship with --championships")
	}
	return spec, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

type summaryPublisher interface {
	PublishSyncSummary(ctx context.Context, trigger syncjob.Trigger, summary syncjob.Summary) error
}

// cliReporter logs progress and publishes each finished summary when Redis is configured
type cliReporter struct {
	syncjob.LogReporter
	trigger   syncjob.Trigger
	summaries summaryPublisher
}

func (c *cliReporter) OnJobComplete(summary syncjob.Summary) {
	c.LogReporter.OnJobComplete(summary)
	if c.summaries == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.summaries.PublishSyncSummary(ctx, c.trigger, summary); err != nil {
		c.Log.Warn("failed to publish sync summary", zap.Error(err))
	}
}
