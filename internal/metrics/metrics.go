package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Name:      "backend_requests_total",
			Help:      "Requests issued to the analysis backend, by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	backendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pitchside",
			Name:      "backend_request_seconds",
			Help:      "Latency of analysis backend requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	toastsShown = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Name:      "toasts_total",
			Help:      "Notifications shown to dashboard users, by severity.",
		},
		[]string{"severity"},
	)

	staleLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Name:      "stale_loads_discarded_total",
			Help:      "Loader results dropped because a newer load of the same kind started.",
		},
		[]string{"loader"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Name:      "sync_runs_total",
			Help:      "Championship sync runs, by trigger and final status.",
		},
		[]string{"trigger", "status"},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pitchside",
			Name:      "websocket_clients",
			Help:      "Browsers currently subscribed to live notifications.",
		},
	)
)

func init() {
	prometheus.MustRegister(backendRequests, backendLatency, toastsShown, staleLoads, syncRuns, wsClients)
}

// ObserveBackendRequest records one backend call
func ObserveBackendRequest(endpoint, outcome string, elapsed time.Duration) {
	backendRequests.WithLabelValues(endpoint, outcome).Inc()
	backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ToastShown counts a notification by severity
func ToastShown(severity string) {
	toastsShown.WithLabelValues(severity).Inc()
}

// StaleLoadDiscarded counts a superseded loader result
func StaleLoadDiscarded(loader string) {
	staleLoads.WithLabelValues(loader).Inc()
}

// SetWebSocketClients publishes the current subscriber count
func SetWebSocketClients(n int) {
	wsClients.Set(float64(n))
}

// SyncRunFinished counts a finished sync run
func SyncRunFinished(trigger, status string) {
	syncRuns.WithLabelValues(trigger, status).Inc()
}
