package sqlstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"minishop/models"
	"minishop/store"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r *userRepo) GetByID(ctx context.Context, publicID string) (*models.User, error) {
	return r.first(ctx, "public_id = ?", publicID)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) first(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Address").Where(cond, arg).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error)
}

func (r *userRepo) Delete(ctx context.Context, publicID string) error {
	db := r.db.WithContext(ctx)
	res := db.Where("public_id = ?", publicID).Delete(&models.User{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	if err := db.Where("user_id = ?", publicID).Delete(&models.UserRole{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", publicID).Delete(&models.Address{}).Error
}

func (r *userRepo) List(ctx context.Context, q store.Query, excludeRole string) ([]models.User, int64, error) {
	query := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.User{})
		if excludeRole != "" {
			holders := r.db.Model(&models.UserRole{}).
				Select("user_roles.user_id").
				Joins("JOIN roles ON roles.public_id = user_roles.role_id").
				Where("roles.name = ?", excludeRole)
			tx = tx.Where("public_id NOT IN (?)", holders)
		}
		if q.Search != "" {
			s := like(q.Search)
			tx = tx.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", s, s, s)
		}
		return tx
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := paginate(query(), q).Preload("Address").Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (r *userRepo) SaveAddress(ctx context.Context, address *models.Address) error {
	db := r.db.WithContext(ctx)
	var existing models.Address
	err := db.Where("user_id = ?", address.UserID).First(&existing).Error
	switch translate(err) {
	case nil:
		address.ID = existing.ID
		address.PublicID = existing.PublicID
		address.CreatedAt = existing.CreatedAt
		return translate(db.Save(address).Error)
	case store.ErrNotFound:
		return translate(db.Create(address).Error)
	default:
		return err
	}
}

func (r *userRepo) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ? AND user_id = ?", addressID, userID).Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
