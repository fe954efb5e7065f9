// Package store defines the persistence contract shared by the Mongo and SQL
// backends.
package store

import (
	"context"
	"errors"

	"minishop/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("record already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Query carries pagination and filtering for list operations.
type Query struct {
	Page       int
	Limit      int
	Search     string
	CategoryID string
}

// Offset returns the number of rows to skip for the requested page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, publicID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, publicID string) error
	// List returns users that do not hold excludeRole, plus the total count.
	List(ctx context.Context, q Query, excludeRole string) ([]models.User, int64, error)
	SaveAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, publicID string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, publicID string) error
	Assign(ctx context.Context, userID, roleID string) error
	Unassign(ctx context.Context, userID, roleID string) error
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
	UserIDsForRole(ctx context.Context, roleID string) ([]string, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, publicID string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, q Query) ([]models.Category, int64, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, publicID string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, publicID string) (*models.Product, error)
	List(ctx context.Context, q Query) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, publicID string) error
	// DecrementStock lowers available quantity by qty only while enough stock
	// remains; otherwise it returns ErrInsufficientStock and changes nothing.
	DecrementStock(ctx context.Context, publicID string, qty int) error
}

type CartRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	GetForUser(ctx context.Context, cartID, userID string) (*models.Cart, error)
	// AddItem increments the quantity of an existing line for the product or
	// inserts a new one.
	AddItem(ctx context.Context, cartID, productID string, qty int) error
	GetItem(ctx context.Context, itemID string) (*models.CartItem, error)
	RemoveItem(ctx context.Context, itemID string) error
	ClearItems(ctx context.Context, cartID string) error
	Delete(ctx context.Context, cartID string) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	AddLine(ctx context.Context, line *models.OrderLine) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, publicID string) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	// MarkPaymentPaid sets the payment to PAID and reports whether this call
	// performed the transition.
	MarkPaymentPaid(ctx context.Context, reference string) (bool, error)
}

// Store groups the repositories and runs units of work.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	// WithTx runs fn in a transaction. Repositories reached through tx take
	// part in it; any error returned by fn rolls every write back.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
