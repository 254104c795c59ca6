// Package metrics exports engine telemetry to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"boost-engine/internal/core/domain"
)

const namespace = "boost_engine"

// Metrics implements port.Metrics. A nil *Metrics is a valid no-op.
type Metrics struct {
	admissions  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	feedLatency prometheus.Histogram
	feedSize    *prometheus.HistogramVec
	violations  prometheus.Counter
}

// MustNewMetrics creates the collectors and registers them on reg. It
// panics if registration fails.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_decisions_total",
			Help:      "Admission decisions by content type and reason.",
		}, []string{"content_type", "reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_transitions_total",
			Help:      "Campaign status transitions.",
		}, []string{"from", "to"}),
		feedLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_build_duration_seconds",
			Help:      "Time spent ranking a feed page.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		feedSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_candidates",
			Help:      "Candidates per ranked feed page.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"kind"}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Persisted campaigns found breaking invariants.",
		}),
	}
	reg.MustRegister(m.admissions, m.transitions, m.feedLatency, m.feedSize, m.violations)
	return m
}

func (m *Metrics) ObserveAdmission(ct domain.ContentType, reason domain.AdmissionReason) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(ct.String(), string(reason)).Inc()
}

func (m *Metrics) ObserveTransition(from, to domain.Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) ObserveFeedBuild(d time.Duration, candidates, sponsored int) {
	if m == nil {
		return
	}
	m.feedLatency.Observe(d.Seconds())
	m.feedSize.WithLabelValues("all").Observe(float64(candidates))
	m.feedSize.WithLabelValues("sponsored").Observe(float64(sponsored))
}

func (m *Metrics) IncInvariantViolation() {
	if m == nil {
		return
	}
	m.violations.Inc()
}
