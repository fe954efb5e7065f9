package models

import "time"

// Product is a catalog item. Price is held in minor currency units.
type Product struct {
	ID                uint      `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID          string    `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	Name              string    `bson:"name" gorm:"size:255;index" json:"name"`
	Description       string    `bson:"description,omitempty" json:"description,omitempty"`
	Price             int64     `bson:"price" json:"price"`
	AvailableQuantity int       `bson:"available_quantity" json:"available_quantity"`
	CategoryID        string    `bson:"category_id" gorm:"size:36;index" json:"category_id"`
	ImageURL          string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}
