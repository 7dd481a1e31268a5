// Package metrics exposes Prometheus collectors and in-process latency percentiles.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onebox",
		Name:      "classifications_total",
		Help:      "Classified messages by category and method",
	}, []string{"category", "method"})

	classificationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "onebox",
		Name:      "classification_latency_seconds",
		Help:      "Wall time from rule attempt to result",
		Buckets:   []float64{0.0005, 0.005, 0.05, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onebox",
		Name:      "notifications_total",
		Help:      "Lead notification attempts by channel and outcome",
	}, []string{"channel", "outcome"})

	replySuggestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onebox",
		Name:      "reply_suggestions_total",
		Help:      "Reply suggestions by method",
	}, []string{"method"})

	sinkErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onebox",
		Name:      "sink_errors_total",
		Help:      "Failed result sink writes",
	}, []string{"sink"})
)

// ObserveClassification records one classification outcome.
func ObserveClassification(category, method string, latency time.Duration) {
	classificationsTotal.WithLabelValues(category, method).Inc()
	classificationLatency.WithLabelValues(method).Observe(latency.Seconds())
	GlobalRegistry().Record("classify", latency)
}

// ObserveNotification records one delivery attempt on a channel.
func ObserveNotification(channel string, ok bool) {
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	notificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// ObserveReplySuggestion records one suggestion and its duration.
func ObserveReplySuggestion(method string, d time.Duration) {
	replySuggestionsTotal.WithLabelValues(method).Inc()
	GlobalRegistry().Record("suggest_reply", d)
}

// ObserveSinkError records a failed sink write.
func ObserveSinkError(sink string) {
	sinkErrorsTotal.WithLabelValues(sink).Inc()
}
