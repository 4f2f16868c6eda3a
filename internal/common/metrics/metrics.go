// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_fetch_total",
			Help: "Total number of page fetches by listing and outcome",
		},
		[]string{"listing", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"listing"},
	)

	ItemsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "listing_items_loaded",
			Help: "Number of items currently held by the listing",
		},
		[]string{"listing"},
	)

	ItemsVisible = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "listing_items_visible",
			Help: "Number of items passing the active filters",
		},
		[]string{"listing"},
	)

	ItemsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_items_rejected_total",
			Help: "Items dropped at the fetch boundary because they failed validation",
		},
		[]string{"listing"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_lookups_total",
			Help: "Page cache lookups by result (hit, miss, error)",
		},
		[]string{"listing", "result"},
	)
)

// Outcome labels for FetchTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeNetwork  = "network_error"
	OutcomeUpstream = "upstream_error"
	OutcomeOther    = "error"
)
