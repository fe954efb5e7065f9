package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"minishop/models"
	"minishop/store"
)

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error)
}

func (r *orderRepo) AddLine(ctx context.Context, line *models.OrderLine) error {
	return translate(r.db.WithContext(ctx).Create(line).Error)
}

func (r *orderRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *orderRepo) GetByID(ctx context.Context, publicID string) (*models.Order, error) {
	return r.first(ctx, "public_id = ?", publicID)
}

func (r *orderRepo) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	return r.first(ctx, "reference = ?", reference)
}

func (r *orderRepo) first(ctx context.Context, cond string, arg any) (*models.Order, error) {
	var order models.Order
	err := r.withLines(ctx).Where(cond, arg).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payment")
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.withLines(ctx).Where("user_id = ?", userID).Order("order_date DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *orderRepo) MarkPaymentPaid(ctx context.Context, reference string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("reference = ? AND status <> ?", reference, models.PaymentPaid).
		Updates(map[string]any{"status": models.PaymentPaid, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if _, err := r.GetPaymentByReference(ctx, reference); err != nil {
		return false, err
	}
	return false, nil
}

var _ store.Store = (*Store)(nil)
