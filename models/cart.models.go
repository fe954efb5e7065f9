package models

import (
	"time"
)

// CartItem represents an item in the cart
type CartItem struct {
	ID        uint      `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID  string    `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	CartID    string    `bson:"-" gorm:"size:36;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID string    `bson:"product_id" gorm:"size:36;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Product   *Product  `bson:"-" gorm:"-" json:"product,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Cart represents a user's shopping cart
type Cart struct {
	ID        uint       `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID  string     `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	UserID    string     `bson:"user_id" gorm:"size:36;uniqueIndex" json:"user_id"`
	Items     []CartItem `bson:"items" gorm:"foreignKey:CartID;references:PublicID" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartView is a cart with its live subtotal.
type CartView struct {
	Cart
	SubTotal int64 `json:"sub_total"`
}

// SubTotal sums product price times quantity over the items whose product
// has been loaded.
func (c *Cart) SubTotal() int64 {
	var total int64
	for _, item := range c.Items {
		if item.Product == nil {
			continue
		}
		total += item.Product.Price * int64(item.Quantity)
	}
	return total
}
