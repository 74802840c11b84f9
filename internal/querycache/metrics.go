package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey_client",
			Subsystem: "querycache",
			Name:      "optimistic_mutations_total",
			Help:      "Optimistic mutations by outcome (confirmed or rolled_back).",
		},
		[]string{"collection", "kind", "outcome"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey_client",
			Subsystem: "querycache",
			Name:      "fetches_total",
			Help:      "View fetches by result (ok, error, superseded).",
		},
		[]string{"collection", "result"},
	)
)
