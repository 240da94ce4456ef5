package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// Metrics exposes breaker state for dashboards. A nil *Metrics is valid.
type Metrics struct {
	State       *prometheus.GaugeVec
	Transitions *prometheus.CounterVec
}

// NewMetrics registers breaker collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "breaker_state",
			Help: "Current breaker state: 0=closed,1=half-open,2=open",
		}, []string{"target"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breaker_transition_total",
			Help: "Count of breaker state transitions",
		}, []string{"target", "from", "to"}),
	}
	if reg != nil {
		reg.MustRegister(m.State, m.Transitions)
	}
	return m
}

func (m *Metrics) observe(name string, from, to gobreaker.State) {
	if m == nil {
		return
	}
	m.State.WithLabelValues(name).Set(stateValue(to))
	if from != to {
		m.Transitions.WithLabelValues(name, from.String(), to.String()).Inc()
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
