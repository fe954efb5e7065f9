package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"minishop/models"
	"minishop/store"
)

type roleRepo struct {
	db *gorm.DB
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	return translate(r.db.WithContext(ctx).Create(role).Error)
}

func (r *roleRepo) GetByID(ctx context.Context, publicID string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepo) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) Update(ctx context.Context, role *models.Role) error {
	return translate(r.db.WithContext(ctx).Save(role).Error)
}

func (r *roleRepo) Delete(ctx context.Context, publicID string) error {
	db := r.db.WithContext(ctx)
	res := db.Where("public_id = ?", publicID).Delete(&models.Role{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return db.Where("role_id = ?", publicID).Delete(&models.UserRole{}).Error
}

func (r *roleRepo) Assign(ctx context.Context, userID, roleID string) error {
	return translate(r.db.WithContext(ctx).Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error)
}

func (r *roleRepo) Unassign(ctx context.Context, userID, roleID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *roleRepo) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.public_id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	return names, err
}

func (r *roleRepo) UserIDsForRole(ctx context.Context, roleID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("role_id = ?", roleID).
		Order("created_at").
		Pluck("user_id", &ids).Error
	return ids, err
}
