package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered in the default registry so both the API server and the worker expose
// them through their /metrics endpoint.
var (
	messagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_published_total",
			Help: "Total number of messages published, partitioned by queue and result.",
		},
		[]string{"queue", "result"},
	)
	messagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_consumed_total",
			Help: "Total number of messages stored successfully by a consumer.",
		},
		[]string{"queue"},
	)
	messagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_dropped_total",
			Help: "Total number of messages acknowledged without being stored, partitioned by reason.",
		},
		[]string{"queue", "reason"},
	)
	processingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_message_processing_duration_seconds",
			Help:    "Time spent processing one delivery.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"queue"},
	)
)

const (
	resultOK    = "ok"
	resultError = "error"

	reasonMalformed = "malformed"
	reasonStore     = "store"
)
