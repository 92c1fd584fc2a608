package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module.
type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	UsersCreated  prometheus.Counter
	UsersLocked   prometheus.Counter
}

// New creates a new Metrics instance with all identity module metrics registered.
func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civreg_login_attempts_total",
			Help: "Login attempts partitioned by outcome",
		}, []string{"outcome"}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_users_created_total",
			Help: "Total number of staff accounts created",
		}),
		UsersLocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_users_locked_total",
			Help: "Total number of account lock actions",
		}),
	}
}

// RecordLogin records a login attempt outcome ("success", "failure", "locked").
func (m *Metrics) RecordLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}
