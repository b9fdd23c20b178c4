// Package metrics exposes the Prometheus registry used by the batch client.
// The metrics themselves are defined in their packages (client, sink, batch)
// and registered via promauto.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry all package metrics land in.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing /metrics on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - placeholder_requests_total{status} (Counter): requests by HTTP status or "network_error"
//   - placeholder_request_duration_seconds (Histogram): request duration
//   - placeholder_errors_total{class} (Counter): failures by class (client, server, unexpected, network)
//
// Sink Metrics (pkg/sink):
//   - placeholder_bytes_written_total (Counter): image bytes written to disk
//   - placeholder_write_errors_total (Counter): failed image writes
//
// Batch Metrics (pkg/batch):
//   - placeholder_items_total{outcome} (Counter): items by outcome
//     (saved, status_failure, transport_failure, write_failure)
//   - placeholder_batch_duration_seconds (Histogram): duration of complete runs
//
// Example Prometheus Queries:
//
//	# Failure ratio
//	sum(rate(placeholder_items_total{outcome!="saved"}[5m])) /
//	sum(rate(placeholder_items_total[5m]))
//
//	# P95 request latency
//	histogram_quantile(0.95, rate(placeholder_request_duration_seconds_bucket[5m]))
