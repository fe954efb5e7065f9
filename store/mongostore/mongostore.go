// Package mongostore implements store.Store on MongoDB. Cart items and order
// lines are embedded in their parent documents; payments live in their own
// collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"minishop/store"
)

const (
	usersCollection      = "users"
	rolesCollection      = "roles"
	userRolesCollection  = "user_roles"
	categoriesCollection = "categories"
	productsCollection   = "products"
	cartsCollection      = "carts"
	ordersCollection     = "orders"
	paymentsCollection   = "payments"
)

// ErrTransactionsUnsupported is returned by Connect when the server is a
// standalone mongod, which cannot run the multi-document transactions
// checkout depends on.
var ErrTransactionsUnsupported = errors.New("mongo: transactions need a replica set or mongos, connected server is standalone")

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, verifies the connection and the topology, and ensures
// indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if err := requireTransactions(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// requireTransactions fails unless the server is a replica set member or a
// mongos router.
func requireTransactions(ctx context.Context, client *mongo.Client) error {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return fmt.Errorf("mongo hello: %w", err)
	}
	if hello.SetName == "" && hello.Msg != "isdbgrid" {
		return ErrTransactionsUnsupported
	}
	return nil
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		usersCollection:      {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		rolesCollection:      {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		userRolesCollection:  {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}}, Options: unique}},
		categoriesCollection: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		productsCollection:   {{Keys: bson.D{{Key: "category_id", Value: 1}}}},
		cartsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "items._id", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "reference", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "reference", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: unique},
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Users() store.UserRepository          { return &userRepo{db: s.db} }
func (s *Store) Roles() store.RoleRepository          { return &roleRepo{db: s.db} }
func (s *Store) Categories() store.CategoryRepository { return &categoryRepo{col: s.db.Collection(categoriesCollection)} }
func (s *Store) Products() store.ProductRepository    { return &productRepo{col: s.db.Collection(productsCollection)} }
func (s *Store) Carts() store.CartRepository          { return &cartRepo{col: s.db.Collection(cartsCollection)} }
func (s *Store) Orders() store.OrderRepository        { return &orderRepo{db: s.db} }

// WithTx runs fn inside a session transaction. The session travels in the
// context handed to fn, so every repository call made with it joins the
// transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	default:
		return err
	}
}

func contains(search string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}

func findOptions(q store.Query, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit)).SetSkip(int64(q.Offset()))
	}
	return opts
}

var _ store.Store = (*Store)(nil)
