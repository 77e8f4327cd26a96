package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records checkout session and reconciliation outcomes.
type PaymentMetrics struct {
	sessionsCreated prometheus.Counter
	reconciles      *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
// A nil registerer yields a no-op instance for tests.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	sessionsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Checkout sessions opened with the payment provider.",
	})
	reconciles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconciles_total",
		Help: "Payment reconciliation attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(sessionsCreated, reconciles)
	return &PaymentMetrics{
		sessionsCreated: sessionsCreated,
		reconciles:      reconciles,
	}
}

// IncSessionCreated increments the created-session counter.
func (p *PaymentMetrics) IncSessionCreated() {
	if p == nil || p.sessionsCreated == nil {
		return
	}
	p.sessionsCreated.Inc()
}

// IncReconcile records a reconciliation outcome.
func (p *PaymentMetrics) IncReconcile(outcome string) {
	if p == nil || p.reconciles == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	p.reconciles.WithLabelValues(outcome).Inc()
}
