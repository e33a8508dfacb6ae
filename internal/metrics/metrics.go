package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	// Metrics counts auth outcomes. A nil *Metrics is valid and records nothing.
	Metrics struct {
		authOps        *prometheus.CounterVec
		gateRejections *prometheus.CounterVec
		reviewOps      *prometheus.CounterVec
		gatherer       prometheus.Gatherer
	}
)

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewbox",
			Subsystem: "auth",
			Name:      "operations_total",
			Help:      "Auth operations by name and outcome",
		}, []string{"op", "outcome"}),
		gateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewbox",
			Subsystem: "auth",
			Name:      "gate_rejections_total",
			Help:      "Requests rejected by the access gate",
		}, []string{"reason"}),
		reviewOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewbox",
			Subsystem: "review",
			Name:      "operations_total",
			Help:      "Review operations by name and outcome",
		}, []string{"op", "outcome"}),
		gatherer: reg,
	}
	reg.MustRegister(m.authOps, m.gateRejections, m.reviewOps)
	return m
}

func (m *Metrics) AuthOp(op, outcome string) {
	if m == nil {
		return
	}
	m.authOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) GateRejected(reason string) {
	if m == nil {
		return
	}
	m.gateRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ReviewOp(op, outcome string) {
	if m == nil {
		return
	}
	m.reviewOps.WithLabelValues(op, outcome).Inc()
}

// Handler exposes every metric registered in the registry given to New.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
