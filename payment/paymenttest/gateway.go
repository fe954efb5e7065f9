// Package paymenttest provides an in-memory payment.Gateway for tests.
package paymenttest

import (
	"context"
	"fmt"
	"sync"

	"minishop/payment"
)

// Gateway records every call and serves sessions from memory.
type Gateway struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*payment.Session

	Requests []payment.CheckoutRequest
	Expired  []string
	Refunds  []payment.Refund

	CreateErr   error
	RetrieveErr error
	ExpireErr   error
}

func New() *Gateway {
	return &Gateway{sessions: make(map[string]*payment.Session)}
}

func (g *Gateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.seq++
	id := fmt.Sprintf("cs_test_%d", g.seq)
	s := &payment.Session{ID: id, URL: "https://checkout.test/pay/" + id, PaymentStatus: "unpaid"}
	g.sessions[id] = s
	g.Requests = append(g.Requests, req)
	out := *s
	return &out, nil
}

func (g *Gateway) RetrieveSession(_ context.Context, sessionID string) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.RetrieveErr != nil {
		return nil, g.RetrieveErr
	}
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", sessionID)
	}
	out := *s
	return &out, nil
}

func (g *Gateway) ExpireSession(_ context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ExpireErr != nil {
		return g.ExpireErr
	}
	g.Expired = append(g.Expired, sessionID)
	return nil
}

func (g *Gateway) RefundPayment(_ context.Context, paymentIntentID string, amount int64) (*payment.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := payment.Refund{ID: "re_" + paymentIntentID, Amount: amount, Status: "succeeded"}
	g.Refunds = append(g.Refunds, r)
	return &r, nil
}

// SetPaymentStatus changes what RetrieveSession reports for a session.
func (g *Gateway) SetPaymentStatus(sessionID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.sessions[sessionID]; ok {
		s.PaymentStatus = status
	}
}

// AddSession registers a session as if it had been created earlier.
func (g *Gateway) AddSession(s payment.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[s.ID] = &s
}

var _ payment.Gateway = (*Gateway)(nil)
