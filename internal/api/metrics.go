package api

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"eftb/internal/engine"
	"eftb/internal/graph"
)

// Metrics collects query counters and latencies under the "eftb" namespace:
//
//   - queries_total{kind,outcome}
//   - query_latency_ms{kind}
//   - search_expanded_states
type Metrics struct {
	queries  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	expanded prometheus.Histogram
}

// NewMetrics registers the collectors with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eftb",
			Name:      "queries_total",
			Help:      "Queries served, by kind and outcome",
		}, []string{"kind", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eftb",
			Name:      "query_latency_ms",
			Help:      "Query duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"kind"}),
		expanded: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eftb",
			Name:      "search_expanded_states",
			Help:      "States expanded per successful path search",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 10),
		}),
	}
}

// observe records one finished query.
func (m *Metrics) observe(kind string, start time.Time, err error) {
	m.queries.WithLabelValues(kind, outcome(err)).Inc()
	m.latency.WithLabelValues(kind).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

func (m *Metrics) observeExpanded(n int) {
	m.expanded.Observe(float64(n))
}

// outcome maps an error onto a low-cardinality label value.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, graph.ErrNotFound), errors.Is(err, engine.ErrNoPath):
		return "not_found"
	case errors.Is(err, engine.ErrInvalidParameter):
		return "invalid"
	case errors.Is(err, engine.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
