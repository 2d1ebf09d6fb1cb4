package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for authorization decisions.
type Metrics struct {
	Decisions *prometheus.CounterVec
}

// New creates a Metrics instance with all access metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cdc_access_decisions_total",
			Help: "Authorization decisions by outcome and deny reason",
		}, []string{"outcome", "reason"}),
	}
}

// RecordAllow records an allowed decision.
func (m *Metrics) RecordAllow() {
	m.Decisions.WithLabelValues("allow", "").Inc()
}

// RecordDeny records a denied decision with its reason.
func (m *Metrics) RecordDeny(reason string) {
	m.Decisions.WithLabelValues("deny", reason).Inc()
}
