package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// itemsTotal counts processed items by outcome
	// (saved, status_failure, transport_failure, write_failure).
	itemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placeholder_items_total",
			Help: "Total work items processed by outcome",
		},
		[]string{"outcome"},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "placeholder_batch_duration_seconds",
			Help:    "Duration of complete batch runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)
