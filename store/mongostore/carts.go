package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"minishop/models"
	"minishop/store"
)

type cartRepo struct {
	col *mongo.Collection
}

func (r *cartRepo) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	cart = &models.Cart{
		PublicID:  uuid.NewString(),
		UserID:    userID,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.col.InsertOne(ctx, cart)
	if mongo.IsDuplicateKeyError(err) {
		return r.GetByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepo) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *cartRepo) GetForUser(ctx context.Context, cartID, userID string) (*models.Cart, error) {
	return r.findOne(ctx, bson.M{"_id": cartID, "user_id": userID})
}

func (r *cartRepo) findOne(ctx context.Context, filter bson.M) (*models.Cart, error) {
	var cart models.Cart
	if err := r.col.FindOne(ctx, filter).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.PublicID
	}
	return &cart, nil
}

// AddItem increments the line for productID or pushes a new one. The push only
// matches while no line for the product exists, so a concurrent first add
// falls back to the increment instead of embedding a duplicate line.
func (r *cartRepo) AddItem(ctx context.Context, cartID, productID string, qty int) error {
	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now().UTC()
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": cartID, "items.product_id": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": qty},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}

		item := models.CartItem{
			PublicID:  uuid.NewString(),
			ProductID: productID,
			Quantity:  qty,
			CreatedAt: now,
		}
		res, err = r.col.UpdateOne(ctx,
			bson.M{"_id": cartID, "items.product_id": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"items": item},
				"$set":  bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *cartRepo) GetItem(ctx context.Context, itemID string) (*models.CartItem, error) {
	cart, err := r.findOne(ctx, bson.M{"items._id": itemID})
	if err != nil {
		return nil, err
	}
	for _, item := range cart.Items {
		if item.PublicID == itemID {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *cartRepo) RemoveItem(ctx context.Context, itemID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"items._id": itemID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"_id": itemID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": cartID}, bson.M{"$set": bson.M{"items": bson.A{}}})
	return err
}

func (r *cartRepo) Delete(ctx context.Context, cartID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": cartID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
