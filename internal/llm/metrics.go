package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"agentd/internal/errs"
)

var (
	generateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentd",
			Subsystem: "generate",
			Name:      "requests_total",
			Help:      "Total number of generation calls by outcome",
		},
		[]string{"backend", "outcome"},
	)

	generateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agentd",
			Subsystem: "generate",
			Name:      "duration_seconds",
			Help:      "Wall time of generation calls, spawn to exit",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(generateRequestsTotal, generateDuration)
}

// observe records one generation call. outcome is "ok" or the error kind.
func observe(backend string, err error, dur time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = errs.KindOf(err).String()
	}
	generateRequestsTotal.WithLabelValues(backend, outcome).Inc()
	generateDuration.WithLabelValues(backend).Observe(dur.Seconds())
}
