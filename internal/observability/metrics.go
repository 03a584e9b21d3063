// Package observability exposes Prometheus metrics for permission decisions
// and live subscribers.
package observability

import (
	"net/http"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's custom metrics and the registry serving them.
type Metrics struct {
	PermissionDecisions *prometheus.CounterVec
	LiveSubscribers     prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a private registry with Go and process collectors plus
// the custom metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		PermissionDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_permission_decisions_total",
				Help: "Permission checks on the write path by permission, role and outcome",
			},
			[]string{"permission", "role", "outcome"},
		),
		LiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_live_subscribers",
			Help: "Number of connected live store subscribers",
		}),
		registry: registry,
	}
	registry.MustRegister(m.PermissionDecisions, m.LiveSubscribers)
	return m
}

// RecordDecision counts one decision per requested permission. A check with
// no permissions is counted under "none".
func (m *Metrics) RecordDecision(role access.Role, perms []access.Permission, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	if len(perms) == 0 {
		m.PermissionDecisions.WithLabelValues("none", role.String(), outcome).Inc()
		return
	}
	for _, p := range perms {
		m.PermissionDecisions.WithLabelValues(string(p), role.String(), outcome).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
