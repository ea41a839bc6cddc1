package membership

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts invariant violations. A nil *Metrics records nothing.
type Metrics struct {
	violations prometheus.Counter
}

// NewMetrics creates and registers the collectors. reg may be nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "membership",
			Name:      "invariant_violations_total",
			Help:      "Active-organization lookups that found more than one active membership.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.violations)
	}
	return m
}

// Violations returns the violations counter.
func (m *Metrics) Violations() prometheus.Counter {
	return m.violations
}

func (m *Metrics) observeViolation() {
	if m == nil {
		return
	}
	m.violations.Inc()
}
