package classifier

import "github.com/prometheus/client_golang/prometheus"

var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moderd",
			Subsystem: "classifier",
			Name:      "backend_requests_total",
			Help:      "Total inference backend calls",
		},
		[]string{"detector", "outcome"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moderd",
			Subsystem: "classifier",
			Name:      "backend_duration_seconds",
			Help:      "Duration of inference backend calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"detector"},
	)

	cacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moderd",
			Subsystem: "classifier",
			Name:      "cache_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"result"},
	)

	recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moderd",
			Subsystem: "classifier",
			Name:      "recommendations_total",
			Help:      "Moderation recommendations by action",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(backendRequestsTotal, backendDuration, cacheTotal, recommendationsTotal)
}
