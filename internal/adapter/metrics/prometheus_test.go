package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

var _ port.Metrics = (*Metrics)(nil)

func TestCounters(t *testing.T) {
	m := MustNewMetrics(prometheus.NewRegistry())

	m.ObserveAdmission(domain.ContentTypePost, domain.ReasonAllowed)
	m.ObserveAdmission(domain.ContentTypePost, domain.ReasonAllowed)
	m.ObserveAdmission(domain.ContentTypeLiveStream, domain.ReasonCooldownActive)
	m.ObserveTransition(domain.StatusActive, domain.StatusPaused)
	m.IncInvariantViolation()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.admissions.WithLabelValues("post", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.admissions.WithLabelValues("live_stream", "cooldown_active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("active", "paused")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violations))
}

func TestFeedBuild(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)
	m.ObserveFeedBuild(3*time.Millisecond, 20, 2)

	n, err := testutil.GatherAndCount(reg, "boost_engine_feed_build_duration_seconds", "boost_engine_feed_candidates")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAdmission(domain.ContentTypePost, domain.ReasonAllowed)
		m.ObserveTransition(domain.StatusActive, domain.StatusCompleted)
		m.ObserveFeedBuild(time.Millisecond, 1, 0)
		m.IncInvariantViolation()
	})
}
