package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/fortuna/pitchside/internal/notify"
	"go.uber.org/zap"
)

type chanSink struct {
	ch chan notify.Toast
}

func (s *chanSink) Deliver(ctx context.Context, toast notify.Toast) error {
	s.ch <- toast
	return nil
}

func TestPush_AssignsIconAndExpiry(t *testing.T) {
	center := notify.NewCenter(zap.NewNop(), 0)

	tests := map[notify.Severity]string{
		notify.SeverityInfo:    "info-circle",
		notify.SeveritySuccess: "check-circle",
		notify.SeverityWarning: "exclamation-triangle",
		notify.SeverityError:   "exclamation-circle",
	}

	for severity, icon := range tests {
		toast := center.Push(severity, "mensagem")
		if toast.Icon != icon {
			t.Errorf("%s: expected icon %s, got %s", severity, icon, toast.Icon)
		}
		if toast.ID == "" {
			t.Errorf("%s: expected an ID", severity)
		}
		if got := toast.ExpiresAt.Sub(toast.CreatedAt); got != notify.DefaultTTL {
			t.Errorf("%s: expected ttl %s, got %s", severity, notify.DefaultTTL, got)
		}
	}
}

func TestActive_PrunesExpired(t *testing.T) {
	center := notify.NewCenter(zap.NewNop(), time.Hour)
	toast := center.Warning("Por favor, insira valores válidos")

	if got := center.Active(toast.CreatedAt); len(got) != 1 {
		t.Fatalf("expected 1 active toast, got %d", len(got))
	}
	if got := center.Active(toast.ExpiresAt); len(got) != 0 {
		t.Errorf("expected toast gone at expiry, got %d", len(got))
	}
}

func TestPush_RemovedAfterTTL(t *testing.T) {
	center := notify.NewCenter(zap.NewNop(), 20*time.Millisecond)
	center.Info("a")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		// Query far in the past so only the timer can remove it.
		if len(center.Active(time.Time{})) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected toast to be removed by its timer")
}

func TestPush_FansOutToSinks(t *testing.T) {
	sink := &chanSink{ch: make(chan notify.Toast, 1)}
	center := notify.NewCenter(zap.NewNop(), time.Second)
	center.AddSink(sink)

	pushed := center.Error("Erro ao carregar equipas")

	select {
	case got := <-sink.ch:
		if got.ID != pushed.ID || got.Message != "Erro ao carregar equipas" {
			t.Errorf("expected delivered toast %+v, got %+v", pushed, got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected toast delivered to sink")
	}
}
