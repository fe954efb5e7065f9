package models

import (
	"strings"
	"time"
)

// Built-in role names.
const (
	RoleAdmin          = "ADMIN"
	RoleUser           = "USER"
	RoleManager        = "MANAGER"
	RoleStoreKeeper    = "STORE_KEEPER"
	RoleProductManager = "PRODUCT_MANAGER"
	RoleSalesManager   = "SALES_MANAGER"
	RoleAccountOfficer = "ACCOUNT_OFFICER"
)

// Role is a named capability that can be granted to users.
type Role struct {
	ID          uint      `bson:"-" gorm:"primaryKey" json:"-"`
	PublicID    string    `bson:"_id" gorm:"size:36;uniqueIndex" json:"id"`
	Name        string    `bson:"name" gorm:"size:100;uniqueIndex" json:"name"`
	Description string    `bson:"description" json:"description"`
	Users       []User    `bson:"-" gorm:"-" json:"users,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// UserRole links a user to a role.
type UserRole struct {
	UserID    string    `bson:"user_id" gorm:"primaryKey;size:36" json:"user_id"`
	RoleID    string    `bson:"role_id" gorm:"primaryKey;size:36" json:"role_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NormalizeRoleName upper-cases a role name and replaces whitespace runs with
// underscores, so "store keeper" becomes "STORE_KEEPER".
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "_"))
}
