package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey_client",
			Name:      "requests_total",
			Help:      "HTTP attempts by method and outcome code (ok or error code).",
		},
		[]string{"method", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "survey_client",
			Name:      "request_duration_seconds",
			Help:      "HTTP attempt latency including error body reads.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
