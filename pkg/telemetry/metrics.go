package telemetry

import (
	"context"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pnp"

// Metrics counts requests and records their latency per operation.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the request collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests dispatched, by operation, method and outcome.",
		}, []string{"operation", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency including retries, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "method"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements odata.Observer.
func (m *Metrics) Observe(_ context.Context, e odata.Event) {
	m.requests.WithLabelValues(e.Operation, e.Method, e.Outcome()).Inc()
	m.duration.WithLabelValues(e.Operation, e.Method).Observe(e.Duration.Seconds())
}
