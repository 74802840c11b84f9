package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "survey_client",
		Name:      "retries_total",
		Help:      "Backoff waits scheduled after a retryable failure.",
	},
	[]string{"code"},
)
