package models

import (
	"time"
)

// OrderLine is a frozen snapshot of one purchased cart item
type OrderLine struct {
	ID        uint      `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID  string    `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	OrderID   string    `bson:"-" gorm:"size:36;index" json:"order_id"`
	ProductID string    `bson:"product_id" gorm:"size:36" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Product   *Product  `bson:"-" gorm:"-" json:"product,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Order represents a user's order
type Order struct {
	ID        uint        `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID  string      `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	UserID    string      `bson:"user_id" gorm:"size:36;index" json:"user_id"`
	Reference string      `bson:"reference" gorm:"size:32;uniqueIndex" json:"reference"`
	OrderDate time.Time   `bson:"order_date" json:"order_date"`
	Lines     []OrderLine `bson:"lines" gorm:"foreignKey:OrderID;references:PublicID" json:"order_lines"`
	Payment   *Payment    `bson:"-" gorm:"foreignKey:OrderID;references:PublicID" json:"payment,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// Total sums the order lines at the prices of their loaded products.
func (o *Order) Total() int64 {
	var total int64
	for _, line := range o.Lines {
		if line.Product != nil {
			total += line.Product.Price * int64(line.Quantity)
		}
	}
	return total
}
