package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRouterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRouterMetrics(reg)

	m.ObserveRoute("expert_trader", "answered", 1.2)
	m.ObserveRoute("expert_trader", "answered", 0.4)
	m.ObserveThreat(false)
	m.ObserveThreat(true)
	m.ObserveThreat(true)
	m.ObserveAuditFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.routesTotal.WithLabelValues("expert_trader", "answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.threatsTotal.WithLabelValues("public")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.threatsTotal.WithLabelValues("officer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.routeLatency))
}

func TestNilRouterMetricsIsSafe(t *testing.T) {
	var m *RouterMetrics
	assert.NotPanics(t, func() {
		m.ObserveRoute("other", "refused", 0.1)
		m.ObserveThreat(true)
		m.ObserveAuditFailure()
	})
}
