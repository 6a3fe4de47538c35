// Package metrics holds the storefront's prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	cartOps   *prometheus.CounterVec
	checkouts *prometheus.CounterVec
	logins    *prometheus.CounterVec
	revenue   prometheus.Counter
}

// New registers the collectors on reg. A nil reg yields a no-op Metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_revenue_total",
		Help: "Sum of placed order totals.",
	})
	reg.MustRegister(cartOps, checkouts, logins, revenue)
	return &Metrics{cartOps: cartOps, checkouts: checkouts, logins: logins, revenue: revenue}
}

func (m *Metrics) CartOp(op string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op)).Inc()
}

// Checkout records one attempt. Placed orders also add their total to revenue.
func (m *Metrics) Checkout(outcome string, total float64) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
	if outcome == OutcomePlaced && total > 0 {
		m.revenue.Add(total)
	}
}

func (m *Metrics) Login(outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

const (
	OutcomePlaced    = "placed"
	OutcomeEmptyCart = "empty_cart"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
	OutcomeSuccess   = "success"
)

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
