package twofactor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeInvalid   = "invalid"
	outcomeThrottled = "throttled"
	outcomeError     = "error"
	outcomeReplay    = "replay"
)

// Metrics holds the coordinator's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	challenges *prometheus.CounterVec
	setups     *prometheus.CounterVec
	disables   *prometheus.CounterVec
	swept      prometheus.Counter
	reconciled prometheus.Counter
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		challenges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twofactor_challenges_total",
				Help: "Second-factor challenges by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		setups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twofactor_setups_total",
				Help: "Setup steps by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		disables: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twofactor_disables_total",
				Help: "Disable requests by outcome",
			},
			[]string{"outcome"},
		),
		swept: f.NewCounter(
			prometheus.CounterOpts{
				Name: "twofactor_trusted_sessions_swept_total",
				Help: "Expired trusted sessions removed by the janitor",
			},
		),
		reconciled: f.NewCounter(
			prometheus.CounterOpts{
				Name: "twofactor_cascades_reconciled_total",
				Help: "Incomplete disable cascades finished by the janitor",
			},
		),
	}
}

func (m *Metrics) challenge(method Method, outcome string) {
	if m != nil {
		m.challenges.WithLabelValues(string(method), outcome).Inc()
	}
}

func (m *Metrics) setup(stage, outcome string) {
	if m != nil {
		m.setups.WithLabelValues(stage, outcome).Inc()
	}
}

func (m *Metrics) disable(outcome string) {
	if m != nil {
		m.disables.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) sweep(n int) {
	if m != nil && n > 0 {
		m.swept.Add(float64(n))
	}
}

func (m *Metrics) reconcile(n int) {
	if m != nil && n > 0 {
		m.reconciled.Add(float64(n))
	}
}
