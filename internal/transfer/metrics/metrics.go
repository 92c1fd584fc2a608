package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the transfer workflow.
type Metrics struct {
	Requested *prometheus.CounterVec
	Approvals *prometheus.CounterVec
	Completed prometheus.Counter
	Rejected  prometheus.Counter
	Conflicts prometheus.Counter
}

// New creates a new Metrics instance with all transfer metrics registered.
func New() *Metrics {
	return &Metrics{
		Requested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civreg_transfers_requested_total",
			Help: "Total number of transfer requests accepted, by transfer type",
		}, []string{"type"}),
		Approvals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civreg_transfer_approvals_total",
			Help: "Total number of approval steps applied, by stage",
		}, []string{"stage"}),
		Completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_transfers_completed_total",
			Help: "Total number of transfers that relocated a residence",
		}),
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_transfers_rejected_total",
			Help: "Total number of transfers rejected",
		}),
		Conflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_transfer_conflicts_total",
			Help: "Total number of requests blocked by an active transfer",
		}),
	}
}

// RecordRequested counts an accepted transfer request.
func (m *Metrics) RecordRequested(transferType string) {
	m.Requested.WithLabelValues(transferType).Inc()
}

// RecordApproval counts an applied approval stage.
func (m *Metrics) RecordApproval(stage string) {
	m.Approvals.WithLabelValues(stage).Inc()
}
