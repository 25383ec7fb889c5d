package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subindex_db_maintenance_duration_seconds",
			Help:    "Duration of database maintenance runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	maintenanceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subindex_db_maintenance_errors_total",
			Help: "Total number of failed database maintenance runs",
		},
	)

	dbSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subindex_db_size_bytes",
			Help: "Total on-disk size of the index database file",
		},
	)
)

func MaintenanceDurationLog(duration time.Duration) {
	maintenanceDuration.Observe(duration.Seconds())
}

func MaintenanceErrorInc() {
	maintenanceErrors.Inc()
}

func DBSizeLog(size int64) {
	dbSize.Set(float64(size))
}
