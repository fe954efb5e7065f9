package models

import (
	"time"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment represents a payment for an order. Reference holds the gateway
// checkout session id and Amount is in minor currency units.
type Payment struct {
	ID        uint          `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID  string        `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	OrderID   string        `bson:"order_id" gorm:"size:36;uniqueIndex" json:"order_id"`
	Amount    int64         `bson:"amount" json:"amount"`
	Status    PaymentStatus `bson:"status" gorm:"size:16" json:"status"`
	Reference string        `bson:"reference" gorm:"size:255;uniqueIndex" json:"reference"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}
