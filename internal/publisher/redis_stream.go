package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/syncjob"
	"github.com/redis/go-redis/v9"
)

const (
	// NotificationsStream carries every toast shown on the dashboard
	NotificationsStream = "dashboard.notifications"
	// SyncRunsStream carries the summary of each finished sync
	SyncRunsStream = "dashboard.sync_runs"

	// streamMaxLen caps each stream; trimming is approximate
	streamMaxLen = 10000
)

// RedisPublisher publishes dashboard events to Redis streams
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to redisURL and verifies the connection
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisStreamPublisher(client), nil
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
	}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// HealthCheck pings Redis to verify connection
func (rp *RedisPublisher) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

// Deliver appends a toast to the notifications stream
func (rp *RedisPublisher) Deliver(ctx context.Context, toast notify.Toast) error {
	values, err := toastValues(toast)
	if err != nil {
		return err
	}
	return rp.publish(ctx, NotificationsStream, values)
}

// PublishSyncSummary appends the outcome of a sync run to the sync stream
func (rp *RedisPublisher) PublishSyncSummary(ctx context.Context, trigger syncjob.Trigger, summary syncjob.Summary) error {
	values, err := summaryValues(trigger, summary, time.Now())
	if err != nil {
		return err
	}
	return rp.publish(ctx, SyncRunsStream, values)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, values map[string]interface{}) error {
	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
}

func toastValues(toast notify.Toast) (map[string]interface{}, error) {
	data, err := json.Marshal(toast)
	if err != nil {
		return nil, fmt.Errorf("marshaling toast: %w", err)
	}

	return map[string]interface{}{
		"data":      string(data),
		"toast_id":  toast.ID,
		"severity":  string(toast.Severity),
		"timestamp": toast.CreatedAt.Unix(),
	}, nil
}

func summaryValues(trigger syncjob.Trigger, summary syncjob.Summary, now time.Time) (map[string]interface{}, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshaling sync summary: %w", err)
	}

	return map[string]interface{}{
		"data":      string(data),
		"trigger":   string(trigger),
		"status":    string(summary.Status()),
		"timestamp": now.Unix(),
	}, nil
}
