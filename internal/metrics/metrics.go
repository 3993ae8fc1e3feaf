package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"

	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeLimited = "rate_limited"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivercomm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivercomm_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// Notifications: попытки отправки по каналу, триггеру и результату.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivercomm_notifications_total",
			Help: "Outbound notification attempts by channel, trigger and outcome",
		},
		[]string{"channel", "trigger", "outcome"},
	)

	LoadEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivercomm_load_events_published_total",
			Help: "Load events published to kafka",
		},
		[]string{"kind", "outcome"},
	)

	LoadEventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivercomm_load_events_consumed_total",
			Help: "Load events handled by the notify worker",
		},
		[]string{"kind", "outcome"},
	)
)

var initOnce sync.Once

// Init регистрирует коллекторы в default registry. Повторные вызовы ничего не делают.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, RequestDuration, Notifications, LoadEventsPublished, LoadEventsConsumed)
	})
}
