// Package metrics содержит метрики Prometheus движка уведомлений.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EligibilityRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_notifier_eligibility_rejections_total",
		Help: "Users rejected by the eligibility filter, by reason",
	}, []string{"reason"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_notifier_notifications_total",
		Help: "Push delivery attempts by outcome",
	}, []string{"outcome"})

	TokensCleared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incident_notifier_tokens_cleared_total",
		Help: "Device tokens cleared after permanent delivery failures",
	})

	Incidents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_notifier_incidents_total",
		Help: "Incidents seen by notification passes, by result",
	}, []string{"result"})

	PassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "incident_notifier_pass_duration_seconds",
		Help:    "Duration of notification passes",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"mode", "status"})

	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_notifier_webhook_deliveries_total",
		Help: "Pass webhook deliveries by result",
	}, []string{"result"})
)
