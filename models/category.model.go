package models

import "time"

// Category groups products in the catalog
type Category struct {
	ID          uint      `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID    string    `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	Name        string    `bson:"name" gorm:"size:100;uniqueIndex" json:"name"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
