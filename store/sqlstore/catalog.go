package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"minishop/models"
	"minishop/store"
)

type categoryRepo struct {
	db *gorm.DB
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *categoryRepo) GetByID(ctx context.Context, publicID string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, q store.Query) ([]models.Category, int64, error) {
	query := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Category{})
		if q.Search != "" {
			tx = tx.Where("LOWER(name) LIKE ?", like(q.Search))
		}
		return tx
	}
	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var categories []models.Category
	err := paginate(query(), q).Order("name").Find(&categories).Error
	return categories, total, err
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Save(category).Error)
}

func (r *categoryRepo) Delete(ctx context.Context, publicID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type productRepo struct {
	db *gorm.DB
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) GetByID(ctx context.Context, publicID string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, q store.Query) ([]models.Product, int64, error) {
	query := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Product{})
		if q.Search != "" {
			s := like(q.Search)
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", s, s)
		}
		if q.CategoryID != "" {
			tx = tx.Where("category_id = ?", q.CategoryID)
		}
		return tx
	}
	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	err := paginate(query(), q).Order("created_at DESC").Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Save(product).Error)
}

func (r *productRepo) Delete(ctx context.Context, publicID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) DecrementStock(ctx context.Context, publicID string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("public_id = ? AND available_quantity >= ?", publicID, qty).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrInsufficientStock
	}
	return nil
}
