package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minishop/models"
	"minishop/store"
)

type userRepo struct {
	db *mongo.Database
}

func (r *userRepo) col() *mongo.Collection { return r.db.Collection(usersCollection) }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := r.col().InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepo) GetByID(ctx context.Context, publicID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": publicID})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.col().FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": user.PublicID}, user)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, publicID string) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": publicID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	_, err = r.db.Collection(userRolesCollection).DeleteMany(ctx, bson.M{"user_id": publicID})
	return err
}

func (r *userRepo) List(ctx context.Context, q store.Query, excludeRole string) ([]models.User, int64, error) {
	filter := bson.M{}
	if excludeRole != "" {
		var role models.Role
		err := r.db.Collection(rolesCollection).FindOne(ctx, bson.M{"name": excludeRole}).Decode(&role)
		switch {
		case err == nil:
			holders, err := userIDsForRole(ctx, r.db, role.PublicID)
			if err != nil {
				return nil, 0, err
			}
			filter["_id"] = bson.M{"$nin": holders}
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, 0, err
		}
	}
	if q.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"email": contains(q.Search)},
			bson.M{"first_name": contains(q.Search)},
			bson.M{"last_name": contains(q.Search)},
		}
	}

	total, err := r.col().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.col().Find(ctx, filter, findOptions(q, bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) SaveAddress(ctx context.Context, address *models.Address) error {
	user, err := r.GetByID(ctx, address.UserID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if user.Address != nil {
		address.PublicID = user.Address.PublicID
		address.CreatedAt = user.Address.CreatedAt
	} else {
		address.CreatedAt = now
	}
	address.UpdatedAt = now

	_, err = r.col().UpdateOne(ctx, bson.M{"_id": address.UserID}, bson.M{"$set": bson.M{"address": address}})
	return err
}

func (r *userRepo) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": userID, "address._id": addressID},
		bson.M{"$unset": bson.M{"address": ""}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type roleRepo struct {
	db *mongo.Database
}

func (r *roleRepo) col() *mongo.Collection { return r.db.Collection(rolesCollection) }

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	now := time.Now().UTC()
	role.CreatedAt, role.UpdatedAt = now, now
	_, err := r.col().InsertOne(ctx, role)
	return translate(err)
}

func (r *roleRepo) GetByID(ctx context.Context, publicID string) (*models.Role, error) {
	var role models.Role
	if err := r.col().FindOne(ctx, bson.M{"_id": publicID}).Decode(&role); err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.col().FindOne(ctx, bson.M{"name": name}).Decode(&role); err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepo) List(ctx context.Context) ([]models.Role, error) {
	cursor, err := r.col().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var roles []models.Role
	err = cursor.All(ctx, &roles)
	return roles, err
}

func (r *roleRepo) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now().UTC()
	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": role.PublicID}, role)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *roleRepo) Delete(ctx context.Context, publicID string) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": publicID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	_, err = r.db.Collection(userRolesCollection).DeleteMany(ctx, bson.M{"role_id": publicID})
	return err
}

func (r *roleRepo) Assign(ctx context.Context, userID, roleID string) error {
	_, err := r.db.Collection(userRolesCollection).InsertOne(ctx, models.UserRole{
		UserID:    userID,
		RoleID:    roleID,
		CreatedAt: time.Now().UTC(),
	})
	return translate(err)
}

func (r *roleRepo) Unassign(ctx context.Context, userID, roleID string) error {
	res, err := r.db.Collection(userRolesCollection).DeleteOne(ctx, bson.M{"user_id": userID, "role_id": roleID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *roleRepo) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	cursor, err := r.db.Collection(userRolesCollection).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var links []models.UserRole
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.RoleID)
	}

	cursor, err = r.col().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var roles []models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

func (r *roleRepo) UserIDsForRole(ctx context.Context, roleID string) ([]string, error) {
	return userIDsForRole(ctx, r.db, roleID)
}

func userIDsForRole(ctx context.Context, db *mongo.Database, roleID string) ([]string, error) {
	cursor, err := db.Collection(userRolesCollection).Find(ctx, bson.M{"role_id": roleID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var links []models.UserRole
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.UserID)
	}
	return ids, nil
}
