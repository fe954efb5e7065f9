package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newTestGateway(t *testing.T, h http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return NewStripeGateway("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestCreateCheckoutSession(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.Form.Get("mode"))
		assert.Equal(t, "buyer@minishop.io", r.Form.Get("customer_email"))
		assert.Equal(t, "user-1", r.Form.Get("client_reference_id"))
		assert.Equal(t, "http://shop.test/api/v1/orders/ORD-abc", r.Form.Get("success_url"))
		assert.Equal(t, "2", r.Form.Get("line_items[0][quantity]"))
		assert.Equal(t, "1000", r.Form.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "ngn", r.Form.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "Mug", r.Form.Get("line_items[0][price_data][product_data][name]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","payment_status":"unpaid"}`))
	})

	s, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{
		SuccessURL:      "http://shop.test/api/v1/orders/ORD-abc",
		CancelURL:       "http://shop.test/api/v1/orders/ORD-abc",
		CustomerEmail:   "buyer@minishop.io",
		ClientReference: "user-1",
		LineItems:       []LineItem{{Name: "Mug", Quantity: 2, UnitAmount: 1000, Currency: "ngn"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", s.URL)
	assert.Equal(t, "unpaid", s.PaymentStatus)
}

func TestRetrieveSession(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","payment_status":"paid","payment_intent":"pi_123"}`))
	})

	s, err := g.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
	assert.Equal(t, "pi_123", s.PaymentIntentID)
}

func TestRetrieveSessionError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session: cs_nope"}}`))
	})

	_, err := g.RetrieveSession(context.Background(), "cs_nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cs_nope")
}

func TestExpireAndRefund(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/checkout/sessions/cs_test_1/expire":
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"expired"}`))
		case "/v1/refunds":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "pi_123", r.Form.Get("payment_intent"))
			assert.Equal(t, "500", r.Form.Get("amount"))
			_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","amount":500,"status":"succeeded"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, g.ExpireSession(context.Background(), "cs_test_1"))

	refund, err := g.RefundPayment(context.Background(), "pi_123", 500)
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, int64(500), refund.Amount)
	assert.Equal(t, "succeeded", refund.Status)
}
