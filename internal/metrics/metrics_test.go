package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CartOp("add")
	m.Checkout(OutcomePlaced, 10)
	m.Login(OutcomeSuccess)

	New(nil).CartOp("add")
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CartOp("add")
	m.CartOp("add")
	m.CartOp("")
	m.Checkout(OutcomePlaced, 4600)
	m.Checkout(OutcomeEmptyCart, 0)
	m.Login(OutcomeFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues(OutcomeEmptyCart)))
	assert.Equal(t, 4600.0, testutil.ToFloat64(m.revenue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues(OutcomeFailed)))
}
