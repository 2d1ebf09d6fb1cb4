package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the center directory.
type Metrics struct {
	CenterCreated      prometheus.Counter
	LocationOfDuration prometheus.Histogram
}

// New creates a Metrics instance with all directory metrics registered.
func New() *Metrics {
	return &Metrics{
		CenterCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cdc_centers_created_total",
			Help: "Total number of centers created",
		}),
		LocationOfDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cdc_center_location_lookup_duration_seconds",
			Help:    "Duration of center location lookups (targeting critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCenterCreated records a successful center creation.
func (m *Metrics) IncrementCenterCreated() {
	m.CenterCreated.Inc()
}

// ObserveLocationOf records the duration of a location lookup.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveLocationOf(start time.Time) {
	m.LocationOfDuration.Observe(time.Since(start).Seconds())
}
