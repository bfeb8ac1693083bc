package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dashtok",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Outbox events published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dashtok",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Outbox events whose delivery failed and were routed to the DLQ.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dashtok",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Wall time per outbox batch, claim through mark-published.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	dlqCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashtok",
		Subsystem: "outbox",
		Name:      "events_dlq_total",
		Help:      "Outbox events written to the dead-letter queue, by topic.",
	}, []string{"topic"})

	// Age of the oldest unpublished row. A growing value means the
	// dispatcher is not keeping up or Kafka is unreachable.
	backlogAgeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dashtok",
		Subsystem: "outbox",
		Name:      "oldest_pending_age_seconds",
		Help:      "Age in seconds of the oldest unpublished outbox event.",
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, batchDuration, dlqCounter, backlogAgeGauge)
}
