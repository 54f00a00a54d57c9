package mediapager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemoteFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediapager_remote_fetch_total",
			Help: "Remote catalog page requests issued by bulk fetches",
		},
		[]string{"source", "status"},
	)

	DrainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediapager_drain_duration_seconds",
			Help:    "Duration of bulk fetches draining a remote catalog",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	BufferedItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediapager_buffered_items",
			Help:    "Number of objects materialized by a bulk fetch",
			Buckets: []float64{0, 50, 100, 250, 500, 1000, 2000},
		},
		[]string{"source"},
	)

	Resorts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediapager_resort_total",
			Help: "Re-sorts applied to loaded buffers",
		},
		[]string{"source", "sort_by"},
	)

	PageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediapager_page_request_total",
			Help: "Local page requests served from buffers",
		},
		[]string{"source"},
	)

	EnrichmentErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediapager_enrichment_errors_total",
			Help: "Failed enrichment calls for newly visible objects",
		},
		[]string{"source"},
	)
)
