package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minishop/models"
	"minishop/store"
)

type orderRepo struct {
	db *mongo.Database
}

func (r *orderRepo) orders() *mongo.Collection   { return r.db.Collection(ordersCollection) }
func (r *orderRepo) payments() *mongo.Collection { return r.db.Collection(paymentsCollection) }

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	if order.Lines == nil {
		order.Lines = []models.OrderLine{}
	}
	_, err := r.orders().InsertOne(ctx, order)
	return translate(err)
}

func (r *orderRepo) AddLine(ctx context.Context, line *models.OrderLine) error {
	line.CreatedAt = time.Now().UTC()
	res, err := r.orders().UpdateOne(ctx,
		bson.M{"_id": line.OrderID},
		bson.M{"$push": bson.M{"lines": line}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *orderRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	now := time.Now().UTC()
	payment.CreatedAt, payment.UpdatedAt = now, now
	_, err := r.payments().InsertOne(ctx, payment)
	return translate(err)
}

func (r *orderRepo) GetByID(ctx context.Context, publicID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": publicID})
}

func (r *orderRepo) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *orderRepo) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	if err := r.orders().FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, translate(err)
	}
	if err := r.attachPayments(ctx, []*models.Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	cursor, err := r.orders().Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "order_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.attachPayments(ctx, ptrs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) attachPayments(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*models.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		for i := range o.Lines {
			o.Lines[i].OrderID = o.PublicID
		}
		byID[o.PublicID] = o
		ids = append(ids, o.PublicID)
	}

	cursor, err := r.payments().Find(ctx, bson.M{"order_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return err
	}
	for i := range payments {
		if o, ok := byID[payments[i].OrderID]; ok {
			o.Payment = &payments[i]
		}
	}
	return nil
}

func (r *orderRepo) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	if err := r.payments().FindOne(ctx, bson.M{"reference": reference}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *orderRepo) MarkPaymentPaid(ctx context.Context, reference string) (bool, error) {
	res, err := r.payments().UpdateOne(ctx,
		bson.M{"reference": reference, "status": bson.M{"$ne": models.PaymentPaid}},
		bson.M{"$set": bson.M{"status": models.PaymentPaid, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	if _, err := r.GetPaymentByReference(ctx, reference); err != nil {
		return false, err
	}
	return false, nil
}
