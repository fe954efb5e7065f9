package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("minishop")

	m.Checkout(CheckoutSuccess)
	m.Checkout(CheckoutSuccess)
	m.Checkout(CheckoutInsufficientStock)
	m.OrphanedSession()
	m.PaymentConfirmed()
	m.ObserveRequest("/api/v1/carts", "GET", "200", 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues(CheckoutSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues(CheckoutInsufficientStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrphanedSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsConfirmed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/carts", "GET", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Checkout(CheckoutFailed)
		m.OrphanedSession()
		m.PaymentConfirmed()
		m.ObserveRequest("/", "GET", "200", 1)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("minishop")
	m.OrphanedSession()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "minishop_orders_orphaned_checkout_sessions_total 1")
}
