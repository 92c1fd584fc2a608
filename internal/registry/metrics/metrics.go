package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the residence registry.
type Metrics struct {
	ResidencesRegistered prometheus.Counter
	Relocations          prometheus.Counter
	RegisterDuration     prometheus.Histogram
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		ResidencesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_residences_registered_total",
			Help: "Total number of residences registered",
		}),
		Relocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_residence_relocations_total",
			Help: "Total number of residence location changes applied",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "civreg_residence_register_duration_seconds",
			Help:    "Duration of residence registration operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRegister records the duration of a Register operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
