package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"minishop/models"
	"minishop/store"
)

type categoryRepo struct {
	col *mongo.Collection
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	now := time.Now().UTC()
	category.CreatedAt, category.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, category)
	return translate(err)
}

func (r *categoryRepo) GetByID(ctx context.Context, publicID string) (*models.Category, error) {
	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": publicID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, q store.Query) ([]models.Category, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter["name"] = contains(q.Search)
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.col.Find(ctx, filter, findOptions(q, bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, 0, err
	}
	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": category.PublicID}, category)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, publicID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": publicID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type productRepo struct {
	col *mongo.Collection
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, product)
	return translate(err)
}

func (r *productRepo) GetByID(ctx context.Context, publicID string) (*models.Product, error) {
	var p models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": publicID}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, q store.Query) ([]models.Product, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": contains(q.Search)},
			bson.M{"description": contains(q.Search)},
		}
	}
	if q.CategoryID != "" {
		filter["category_id"] = q.CategoryID
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.col.Find(ctx, filter, findOptions(q, bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": product.PublicID}, product)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, publicID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": publicID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) DecrementStock(ctx context.Context, publicID string, qty int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": publicID, "available_quantity": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"available_quantity": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrInsufficientStock
	}
	return nil
}
