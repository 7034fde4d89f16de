package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChainQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainmeet_chain_queries_total",
		Help: "Total contract queries, labelled by endpoint and status.",
	}, []string{"endpoint", "status"})

	ChainExecutes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainmeet_chain_executes_total",
		Help: "Total state-changing contract calls, labelled by endpoint and status.",
	}, []string{"endpoint", "status"})

	DecodeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainmeet_decode_fallbacks_total",
		Help: "Total record fields replaced by a sentinel during decode, labelled by field.",
	}, []string{"field"})

	SnapshotRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainmeet_snapshot_refreshes_total",
		Help: "Total collection refreshes, labelled by trigger and status.",
	}, []string{"trigger", "status"})

	SnapshotRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chainmeet_snapshot_records",
		Help: "Number of meetup records in the current snapshot.",
	})

	GeocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainmeet_geocode_lookups_total",
		Help: "Total forward-geocoding lookups, labelled by status.",
	}, []string{"status"})

	PreviewFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainmeet_preview_fetches_total",
		Help: "Total link-preview fetches, labelled by status.",
	}, []string{"status"})
)
