// Package observability exposes service-level prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dashtok",
		Subsystem: "activities",
		Name:      "last_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})

	recomputeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashtok",
		Subsystem: "allowance",
		Name:      "recompute_total",
		Help:      "Number of allowance recomputations by outcome.",
	}, []string{"outcome"})

	decisionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashtok",
		Subsystem: "enforcement",
		Name:      "decisions_total",
		Help:      "Number of enforcement status decisions by reason.",
	}, []string{"reason"})

	bypassCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashtok",
		Subsystem: "enforcement",
		Name:      "bypass_requests_total",
		Help:      "Number of emergency bypass requests by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, recomputeCounter, decisionCounter, bypassCounter)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordRecompute counts one recompute attempt.
func RecordRecompute(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	recomputeCounter.WithLabelValues(outcome).Inc()
}

// RecordDecision counts one enforcement decision.
func RecordDecision(reason string) {
	decisionCounter.WithLabelValues(reason).Inc()
}

// RecordBypass counts one bypass request.
func RecordBypass(granted bool) {
	result := "granted"
	if !granted {
		result = "denied"
	}
	bypassCounter.WithLabelValues(result).Inc()
}
