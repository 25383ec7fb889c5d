package source

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	headersReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subindex_source_headers_received_total",
			Help: "Total number of finalized head announcements received",
		},
	)

	streamDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subindex_source_stream_disconnects_total",
			Help: "Total number of finalized head stream disconnections",
		},
	)

	retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subindex_source_retries_total",
			Help: "Total number of retried gateway requests by operation",
		},
		[]string{"operation"},
	)

	fetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subindex_source_fetch_duration_seconds",
			Help:    "Duration of block fetches including retries",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func HeadersReceivedInc() {
	headersReceived.Inc()
}

func StreamDisconnectInc() {
	streamDisconnects.Inc()
}

func SourceRetryInc(operation string) {
	retries.WithLabelValues(operation).Inc()
}

func FetchDurationLog(duration time.Duration) {
	fetchDuration.Observe(duration.Seconds())
}
