package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for content operations.
type Metrics struct {
	Posted *prometheus.CounterVec
}

// New creates a Metrics instance with all content metrics registered.
func New() *Metrics {
	return &Metrics{
		Posted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cdc_content_posted_total",
			Help: "Content items posted, by kind",
		}, []string{"kind"}),
	}
}

// RecordPosted records a posted item.
func (m *Metrics) RecordPosted(kind string) {
	m.Posted.WithLabelValues(kind).Inc()
}
