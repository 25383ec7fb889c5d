package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subindex_store_blocks_upserted_total",
			Help: "Total number of blocks written to the store",
		},
	)

	upsertDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subindex_store_upsert_duration_seconds",
			Help:    "Duration of block upsert transactions",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func BlocksUpsertedInc() {
	blocksUpserted.Inc()
}

func UpsertDurationLog(duration time.Duration) {
	upsertDuration.Observe(duration.Seconds())
}
