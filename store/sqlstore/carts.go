package sqlstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"minishop/models"
	"minishop/store"
)

type cartRepo struct {
	db *gorm.DB
}

// GetOrCreate returns the user's cart, creating it on first use. A concurrent
// create that wins the unique user_id race is picked up by re-reading.
func (r *cartRepo) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{PublicID: uuid.NewString(), UserID: userID}
	err = translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error)
	if errors.Is(err, store.ErrConflict) {
		return r.GetByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepo) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *cartRepo) GetForUser(ctx context.Context, cartID, userID string) (*models.Cart, error) {
	return r.first(ctx, "public_id = ? AND user_id = ?", cartID, userID)
}

func (r *cartRepo) first(ctx context.Context, cond string, args ...any) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where(cond, args...).
		First(&cart).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (r *cartRepo) AddItem(ctx context.Context, cartID, productID string, qty int) error {
	increment := func() (bool, error) {
		res := r.db.WithContext(ctx).Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
		return res.RowsAffected > 0, res.Error
	}

	ok, err := increment()
	if err != nil || ok {
		return err
	}
	item := &models.CartItem{
		PublicID:  uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
	}
	err = translate(r.db.WithContext(ctx).Create(item).Error)
	if errors.Is(err, store.ErrConflict) {
		_, err = increment()
	}
	return err
}

func (r *cartRepo) GetItem(ctx context.Context, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Where("public_id = ?", itemID).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, itemID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (r *cartRepo) Delete(ctx context.Context, cartID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", cartID).Delete(&models.Cart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
