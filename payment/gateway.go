// Package payment adapts the hosted-checkout payment provider.
package payment

import "context"

// PaymentStatusPaid is the session payment status reported once funds are
// captured.
const PaymentStatusPaid = "paid"

// LineItem is one priced line on a hosted checkout page. UnitAmount is in
// minor currency units.
type LineItem struct {
	Name       string
	Quantity   int64
	UnitAmount int64
	Currency   string
}

type CheckoutRequest struct {
	SuccessURL      string
	CancelURL       string
	CustomerEmail   string
	ClientReference string
	LineItems       []LineItem
}

// Session is the provider's view of a hosted checkout session.
type Session struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
}

type Refund struct {
	ID     string
	Amount int64
	Status string
}

// Gateway creates hosted checkout sessions and reports on them.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	ExpireSession(ctx context.Context, sessionID string) error
	// RefundPayment refunds amount minor units of a captured payment; zero
	// refunds it in full.
	RefundPayment(ctx context.Context, paymentIntentID string, amount int64) (*Refund, error)
}
