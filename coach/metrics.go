package coach

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records orchestration outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stale    prometheus.Counter
}

// NewMetrics registers the coach collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "writewise",
			Subsystem: "coach",
			Name:      "requests_total",
			Help:      "Orchestration requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "writewise",
			Subsystem: "coach",
			Name:      "request_duration_seconds",
			Help:      "Duration of model-backed orchestration requests",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"operation"}),
		stale: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "writewise",
			Subsystem: "coach",
			Name:      "stale_results_total",
			Help:      "Results discarded because a newer request had started",
		}),
	}
}

func (m *Metrics) observe(op Operation, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(op), result).Inc()
	if elapsed > 0 {
		m.duration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) staleResult() {
	if m == nil {
		return
	}
	m.stale.Inc()
}
