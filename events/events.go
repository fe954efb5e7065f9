// Package events publishes domain events after a unit of work commits.
package events

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	TypeOrderCreated = "order.created"
	TypePaymentPaid  = "payment.paid"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New stamps an event with a sortable id. key selects the partition or
// routing target, normally the order reference.
func New(eventType, key string, payload any) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderCreated struct {
	OrderID   string      `json:"order_id"`
	Reference string      `json:"reference"`
	UserID    string      `json:"user_id"`
	SessionID string      `json:"session_id"`
	Amount    int64       `json:"amount"`
	Currency  string      `json:"currency"`
	Lines     []OrderLine `json:"lines"`
}

type PaymentPaid struct {
	OrderID   string `json:"order_id"`
	Reference string `json:"reference"`
	PaymentID string `json:"payment_id"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
