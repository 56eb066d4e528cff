package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appforge"

// Reconcile counts reconciliation passes by outcome and the corrective
// writes they issue by entity. A nil *Reconcile is a no-op.
type Reconcile struct {
	passes *prometheus.CounterVec
	writes *prometheus.CounterVec
}

func NewReconcile(reg prometheus.Registerer) *Reconcile {
	m := &Reconcile{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "passes_total",
			Help:      "Subscription reconciliation passes by outcome.",
		}, []string{"outcome"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "writes_total",
			Help:      "Corrective writes issued by reconciliation, by entity.",
		}, []string{"entity"}),
	}
	if reg != nil {
		reg.MustRegister(m.passes, m.writes)
	}
	return m
}

func (m *Reconcile) ObservePass(outcome string) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(outcome).Inc()
}

func (m *Reconcile) ObserveWrite(entity string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entity).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
