package notify

import (
	"context"
	"sync"
	"time"

	"github.com/fortuna/pitchside/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long a toast stays visible
const DefaultTTL = 5 * time.Second

const sinkTimeout = 3 * time.Second

// Severity of a toast
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Icon returns the Font Awesome icon name for the severity
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "check-circle"
	case SeverityError:
		return "exclamation-circle"
	case SeverityWarning:
		return "exclamation-triangle"
	default:
		return "info-circle"
	}
}

// Toast is a transient notification
type Toast struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Icon      string    `json:"icon"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sink receives every toast as it is pushed
type Sink interface {
	Deliver(ctx context.Context, toast Toast) error
}

// Center keeps the active toasts and fans each new one out to the sinks
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	sinks  []Sink
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewCenter creates a notification center. A non-positive ttl uses DefaultTTL.
func NewCenter(log *zap.Logger, ttl time.Duration, sinks ...Sink) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Center{
		sinks: sinks,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// AddSink registers another destination for toasts
func (c *Center) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Push shows a toast and schedules its removal
func (c *Center) Push(severity Severity, message string) Toast {
	now := c.now()
	toast := Toast{
		ID:        uuid.NewString(),
		Severity:  severity,
		Icon:      severity.Icon(),
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.toasts = append(c.toasts, toast)
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()

	time.AfterFunc(c.ttl, func() { c.remove(toast.ID) })

	metrics.ToastShown(string(severity))
	c.logToast(toast)

	for _, sink := range sinks {
		go c.deliver(sink, toast)
	}

	return toast
}

func (c *Center) Info(message string) Toast    { return c.Push(SeverityInfo, message) }
func (c *Center) Success(message string) Toast { return c.Push(SeveritySuccess, message) }
func (c *Center) Warning(message string) Toast { return c.Push(SeverityWarning, message) }
func (c *Center) Error(message string) Toast   { return c.Push(SeverityError, message) }

// Active returns the toasts that have not expired at now, oldest first
func (c *Center) Active(now time.Time) []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	c.toasts = kept

	return append([]Toast(nil), kept...)
}

func (c *Center) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}

func (c *Center) deliver(sink Sink, toast Toast) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := sink.Deliver(ctx, toast); err != nil {
		c.log.Warn("toast delivery failed", zap.String("toast_id", toast.ID), zap.Error(err))
	}
}

func (c *Center) logToast(t Toast) {
	fields := []zap.Field{
		zap.String("toast_id", t.ID),
		zap.String("severity", string(t.Severity)),
		zap.String("message", t.Message),
	}
	switch t.Severity {
	case SeverityError:
		c.log.Error("toast", fields...)
	case SeverityWarning:
		c.log.Warn("toast", fields...)
	default:
		c.log.Info("toast", fields...)
	}
}
