package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Notification rows written, by notification type
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notification rows created",
		},
		[]string{"type"},
	)

	// Dispatches that failed after the triggering write committed
	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_failures_total",
			Help: "Total number of domain events whose notifications could not be written",
		},
		[]string{"event"},
	)

	FanoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_fanout_duration_seconds",
			Help:    "Time spent materializing notifications for one domain event",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"event"},
	)

	RetentionDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_retention_deleted_total",
			Help: "Total number of read notifications removed by the retention sweep",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

func AddNotificationsCreated(notificationType string, n int64) {
	if n > 0 {
		NotificationsCreated.WithLabelValues(notificationType).Add(float64(n))
	}
}

func IncrementDispatchFailure(event string) {
	DispatchFailures.WithLabelValues(event).Inc()
}

func RecordFanoutDuration(event string, duration time.Duration) {
	FanoutDuration.WithLabelValues(event).Observe(duration.Seconds())
}

func AddRetentionDeleted(n int64) {
	if n > 0 {
		RetentionDeleted.Add(float64(n))
	}
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
