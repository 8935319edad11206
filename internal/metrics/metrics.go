package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BuildMetrics records curriculum build outcomes.
type BuildMetrics struct {
	builds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	concepts *prometheus.GaugeVec
}

// New registers the build collectors with reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration on the default registry.
func New(reg prometheus.Registerer) *BuildMetrics {
	factory := promauto.With(reg)
	return &BuildMetrics{
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curricula_builds_total",
			Help: "Total curriculum builds by discipline and status",
		}, []string{"discipline", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curricula_build_duration_seconds",
			Help:    "Duration of curriculum builds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"discipline"}),
		concepts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "curricula_concepts",
			Help: "Number of concepts in the latest build of each discipline",
		}, []string{"discipline"}),
	}
}

// ObserveBuild records one finished build. concepts is ignored on failure.
func (m *BuildMetrics) ObserveBuild(discipline string, elapsed time.Duration, concepts int, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.builds.WithLabelValues(discipline, status).Inc()
	m.duration.WithLabelValues(discipline).Observe(elapsed.Seconds())
	if err == nil {
		m.concepts.WithLabelValues(discipline).Set(float64(concepts))
	}
}
