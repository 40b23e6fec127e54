package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/pitchside/internal/api/web"
	"github.com/fortuna/pitchside/internal/api/websocket"
	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/config"
	"github.com/fortuna/pitchside/internal/dashboard"
	"github.com/fortuna/pitchside/internal/logging"
	"github.com/fortuna/pitchside/internal/metrics"
	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/publisher"
	"github.com/fortuna/pitchside/internal/state"
	"github.com/fortuna/pitchside/internal/store"
	"github.com/fortuna/pitchside/internal/store/repository"
	"github.com/fortuna/pitchside/internal/syncjob"
	"go.uber.org/zap"
)

const (
	serviceName    = "pitchside"
	serviceVersion = "1.0.0"

	redisMaxRetries = 5
	redisRetryDelay = 2 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(serviceName, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting dashboard",
		zap.String("version", serviceVersion),
		zap.String("backend", cfg.Backend.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sync audit store (optional)
	var (
		db   *store.Database
		runs *repository.SyncRunRepository
	)
	if cfg.DatabaseDSN != "" {
		db, err = store.NewDatabase(cfg.DatabaseDSN, log.Named("store"))
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
		runs = repository.NewSyncRunRepository(db)
		log.Info("sync audit store ready")
	} else {
		log.Info("DATABASE_DSN not set, sync runs will not be recorded")
	}

	// Notification stream (optional)
	var streams *publisher.RedisPublisher
	if cfg.RedisURL != "" {
		streams = connectRedis(ctx, cfg.RedisURL, log)
		if streams != nil {
			defer streams.Close()
		}
	}

	hub := websocket.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	sinks := []notify.Sink{hub}
	if streams != nil {
		sinks = append(sinks, streams)
	}
	notes := notify.NewCenter(log.Named("notify"), cfg.ToastTTL, sinks...)

	client := backend.New(backend.Config{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		SyncInterval: cfg.Sync.Interval,
	})

	var recorder syncjob.Recorder
	if runs != nil {
		recorder = runs
	}
	runner := syncjob.NewRunner(client, recorder, log.Named("sync"))

	ctrl := dashboard.NewController(client, state.NewStore(), notes, runner,
		dashboard.Config{Championships: cfg.Sync.Championships}, log.Named("dashboard"))

	// Startup sequence runs in the background so the page is served immediately
	go ctrl.Init(ctx)

	// Metrics server
	metricsSrv := metrics.NewServer(cfg.Server.MetricsPort, func(ctx context.Context) error {
		if db != nil {
			return db.HealthCheck(ctx)
		}
		return nil
	})
	metrics.Start(metricsSrv, log)

	opts := web.Options{
		Port:          cfg.Server.HTTPPort,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Notifications: websocket.NewHandler(ctx, hub, nil, log.Named("ws")),
		Clients:       hub,
	}
	if runs != nil {
		opts.Runs = runs
		opts.Database = db
	}
	server := web.NewServer(ctrl, opts, log.Named("web"))

	go func() {
		log.Info("dashboard listening", zap.String("port", cfg.Server.HTTPPort))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("dashboard server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("dashboard server shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics server shutdown error", zap.Error(err))
	}

	log.Info("stopped")
}

// connectRedis retries the connection a few times; the dashboard runs without
// the notification stream when Redis stays unreachable.
func connectRedis(ctx context.Context, url string, log *zap.Logger) *publisher.RedisPublisher {
	for i := 0; i < redisMaxRetries; i++ {
		p, err := publisher.NewRedisPublisher(url)
		if err == nil {
			log.Info("connected to redis")
			return p
		}

		log.Warn("redis connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("max", redisMaxRetries),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(redisRetryDelay):
		}
	}

	log.Warn("redis unavailable, notification stream disabled")
	return nil
}
