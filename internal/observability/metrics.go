package observability

import "github.com/prometheus/client_golang/prometheus"

// RouterMetrics exposes counters/histograms for the routing pipeline.
type RouterMetrics struct {
	routesTotal   *prometheus.CounterVec
	threatsTotal  *prometheus.CounterVec
	auditFailures prometheus.Counter
	routeLatency  *prometheus.HistogramVec
}

func NewRouterMetrics(reg prometheus.Registerer) *RouterMetrics {
	m := &RouterMetrics{
		routesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "customs",
			Subsystem: "router",
			Name:      "routes_total",
			Help:      "Routed queries by category and outcome",
		}, []string{"category", "outcome"}),
		threatsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "customs",
			Subsystem: "router",
			Name:      "threats_total",
			Help:      "Positive threat verdicts by actor type",
		}, []string{"actor"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "customs",
			Subsystem: "audit",
			Name:      "append_failures_total",
			Help:      "Threat records that could not be persisted",
		}),
		routeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "customs",
			Subsystem: "router",
			Name:      "route_latency_seconds",
			Help:      "End-to-end latency of Route",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.routesTotal, m.threatsTotal, m.auditFailures, m.routeLatency)
	return m
}

func (m *RouterMetrics) ObserveRoute(category, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.routesTotal.WithLabelValues(category, outcome).Inc()
	m.routeLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *RouterMetrics) ObserveThreat(officer bool) {
	if m == nil {
		return
	}
	label := "public"
	if officer {
		label = "officer"
	}
	m.threatsTotal.WithLabelValues(label).Inc()
}

func (m *RouterMetrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}
