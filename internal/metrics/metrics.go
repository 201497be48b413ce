// Package metrics defines the Prometheus collectors of the budget planner.
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "budgetplanner"

// Result label values.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

var (
	// RequestDuration observes HTTP latency by route template, not raw path.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "The HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "CSV rows checked on import, partitioned by validation result.",
		},
		[]string{"result"},
	)

	Transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Budget transfers, partitioned by outcome.",
		},
		[]string{"result"},
	)

	TransferredEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_entries_total",
			Help:      "Entries copied by budget transfers.",
		},
	)

	SummaryCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Budget summary cache lookups, partitioned by hit or miss.",
		},
		[]string{"result"},
	)
)

var collectors = []prometheus.Collector{
	RequestDuration,
	ImportRows,
	Transfers,
	TransferredEntries,
	SummaryCache,
}

// Register adds every collector to reg. Collectors that are already
// registered are left alone, so Register is safe to call more than once.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return fmt.Errorf("could not register %v with Prometheus: %w", c, err)
		}
	}
	return nil
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
