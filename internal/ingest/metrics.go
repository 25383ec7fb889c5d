package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subindex_ingest_blocks_total",
			Help: "Total number of blocks fetched, decoded and stored",
		},
	)

	ingestedHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subindex_ingest_head",
			Help: "Number of the most recently stored block",
		},
	)

	anomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subindex_ingest_anomalies_total",
			Help: "Total number of decode anomalies that degraded to a best-effort rendering",
		},
	)

	state = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subindex_ingest_state",
			Help: "Current ingestion state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)
)

func BlocksIngestedInc() {
	blocksIngested.Inc()
}

func IngestedHeadSet(number uint64) {
	ingestedHead.Set(float64(number))
}

func AnomaliesInc() {
	anomalies.Inc()
}

func StateSet(active string) {
	for _, s := range []string{"idle", "catching_up", "ingesting", "faulted"} {
		if s == active {
			state.WithLabelValues(s).Set(1)
		} else {
			state.WithLabelValues(s).Set(0)
		}
	}
}
