package models

import (
	"time"
)

// Address represents a user's address for delivery
type Address struct {
	ID         uint      `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID   string    `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	UserID     string    `bson:"user_id" gorm:"size:36;uniqueIndex" json:"-"`
	Street     string    `bson:"street" json:"street"`
	City       string    `bson:"city" json:"city"`
	State      string    `bson:"state" json:"state"`
	Country    string    `bson:"country" json:"country"`
	PostalCode string    `bson:"postal_code" json:"postal_code"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// User represents a user in the system
type User struct {
	ID                uint       `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID          string     `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	FirstName         string     `bson:"first_name" json:"first_name"`
	LastName          string     `bson:"last_name" json:"last_name"`
	Email             string     `bson:"email" gorm:"size:191;uniqueIndex" json:"email"`
	Password          string     `bson:"password" json:"-"`
	IsEnabled         bool       `bson:"is_enabled" json:"is_enabled"`
	IsAccountDeleted  bool       `bson:"is_account_deleted" json:"is_account_deleted"`
	VerificationToken string     `bson:"verification_token,omitempty" json:"-"`
	TokenExpiredAt    *time.Time `bson:"token_expired_at,omitempty" json:"-"`
	RefreshToken      string     `bson:"refresh_token,omitempty" json:"-"`
	ChangedPasswordAt *time.Time `bson:"changed_password_at,omitempty" json:"-"`
	Address           *Address   `bson:"address,omitempty" gorm:"foreignKey:UserID;references:PublicID" json:"address,omitempty"`
	Roles             []string   `bson:"-" gorm:"-" json:"roles,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

// HasRole reports whether the loaded role set contains name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}
