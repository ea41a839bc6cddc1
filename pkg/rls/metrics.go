package rls

import "github.com/prometheus/client_golang/prometheus"

const (
	modeTenant    = "tenant"
	modeAnonymous = "anonymous"

	resultCommitted = "committed"
	resultFailed    = "failed"
	resultRejected  = "rejected"
)

// Metrics exposes RLS transaction and audit signals. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	transactions *prometheus.CounterVec
	unprotected  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "rls",
			Name:      "transactions_total",
			Help:      "Transactions opened by the RLS manager by mode and result.",
		}, []string{"mode", "result"}),
		unprotected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tenantkit",
			Subsystem: "rls",
			Name:      "unprotected_tables",
			Help:      "Tenant-scoped tables without row level security at the last audit.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.transactions, m.unprotected)
	}
	return m
}

// Transactions returns the transactions counter.
func (m *Metrics) Transactions() *prometheus.CounterVec {
	return m.transactions
}

// Unprotected returns the audit gauge.
func (m *Metrics) Unprotected() prometheus.Gauge {
	return m.unprotected
}

func (m *Metrics) observeTx(mode, result string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) observeAudit(unprotected int) {
	if m == nil {
		return
	}
	m.unprotected.Set(float64(unprotected))
}
