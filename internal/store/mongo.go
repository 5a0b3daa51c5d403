package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkurov/storefront/internal/model"
)

// MongoStore implements Store over MongoDB.  Each entity maps to one
// collection; documents use int64 _id values produced by nextID so ids
// look the same as on the other backends.
//
// MongoDB has no auto-increment, so ids come from a `counters`
// collection with one document per entity collection:
//
//	{ _id: "orders", seq: 41 }
//
// Allocation is a single FindOneAndUpdate with $inc and upsert,
// returning the post-increment document.  The increment happens inside
// the server's single-document write, so concurrent allocations for the
// same collection can never observe the same value.  Never replace this
// with a read-then-write from the client.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore returns a MongoStore bound to an open database handle.
func NewMongoStore(db *mongo.Database) *MongoStore { return &MongoStore{db: db} }

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// nextID atomically allocates the next id for a collection.  Counters
// start absent; the upsert creates them with seq=1 on first use.
func (s *MongoStore) nextID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func mongoTranslate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mongoTranslate(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ----- users -----

func (s *MongoStore) users() *mongo.Collection { return s.db.Collection("users") }

func (s *MongoStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return findOne[model.User](ctx, s.users(), bson.M{"_id": id})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, s.users(), bson.M{"username": username})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.users(), bson.M{"email": email})
}

func (s *MongoStore) CreateUser(ctx context.Context, n model.NewUser) (*model.User, error) {
	id, err := s.nextID(ctx, "users")
	if err != nil {
		return nil, err
	}
	u := model.User{
		ID:           id,
		Username:     n.Username,
		Email:        n.Email,
		PasswordHash: n.PasswordHash,
		FirstName:    n.FirstName,
		LastName:     n.LastName,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		return nil, mongoTranslate(err)
	}
	return &u, nil
}

// ----- categories -----

func (s *MongoStore) categories() *mongo.Collection { return s.db.Collection("categories") }

func (s *MongoStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	return findAll[model.Category](ctx, s.categories(), bson.M{})
}

func (s *MongoStore) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return findOne[model.Category](ctx, s.categories(), bson.M{"_id": id})
}

func (s *MongoStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return findOne[model.Category](ctx, s.categories(), bson.M{"slug": slug})
}

func (s *MongoStore) CreateCategory(ctx context.Context, n model.NewCategory) (*model.Category, error) {
	id, err := s.nextID(ctx, "categories")
	if err != nil {
		return nil, err
	}
	c := model.Category{ID: id, Name: n.Name, Slug: n.Slug}
	if _, err := s.categories().InsertOne(ctx, c); err != nil {
		return nil, mongoTranslate(err)
	}
	return &c, nil
}

// ----- products -----

func (s *MongoStore) products() *mongo.Collection { return s.db.Collection("products") }

func (s *MongoStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return findAll[model.Product](ctx, s.products(), bson.M{})
}

func (s *MongoStore) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	return findOne[model.Product](ctx, s.products(), bson.M{"_id": id})
}

func (s *MongoStore) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return findOne[model.Product](ctx, s.products(), bson.M{"slug": slug})
}

func (s *MongoStore) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return findAll[model.Product](ctx, s.products(), bson.M{"category_id": categoryID})
}

func (s *MongoStore) ListProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	return findAll[model.Product](ctx, s.products(), bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoStore) CreateProduct(ctx context.Context, n model.NewProduct) (*model.Product, error) {
	id, err := s.nextID(ctx, "products")
	if err != nil {
		return nil, err
	}
	p := model.Product{
		ID:          id,
		Name:        n.Name,
		Slug:        n.Slug,
		Description: n.Description,
		Price:       n.Price,
		IsOnSale:    n.IsOnSale,
		SalePrice:   n.SalePrice,
		Stock:       n.Stock,
		CategoryID:  n.CategoryID,
		ImageURL:    n.ImageURL,
		Rating:      n.Rating,
		ReviewCount: n.ReviewCount,
	}
	if _, err := s.products().InsertOne(ctx, p); err != nil {
		return nil, mongoTranslate(err)
	}
	return &p, nil
}

// ----- orders -----

func (s *MongoStore) orders() *mongo.Collection { return s.db.Collection("orders") }

func (s *MongoStore) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return findAll[model.Order](ctx, s.orders(), bson.M{"user_id": userID})
}

func (s *MongoStore) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	return findOne[model.Order](ctx, s.orders(), bson.M{"_id": id})
}

func (s *MongoStore) CreateOrder(ctx context.Context, n model.NewOrder) (*model.Order, error) {
	id, err := s.nextID(ctx, "orders")
	if err != nil {
		return nil, err
	}
	o := model.Order{
		ID:        id,
		UserID:    n.UserID,
		Total:     n.Total,
		Status:    n.Status,
		Address:   n.Address,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.orders().InsertOne(ctx, o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ----- order items -----

func (s *MongoStore) orderItems() *mongo.Collection { return s.db.Collection("order_items") }

func (s *MongoStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return findAll[model.OrderItem](ctx, s.orderItems(), bson.M{"order_id": orderID})
}

func (s *MongoStore) CreateOrderItem(ctx context.Context, n model.NewOrderItem) (*model.OrderItem, error) {
	id, err := s.nextID(ctx, "order_items")
	if err != nil {
		return nil, err
	}
	it := model.OrderItem{
		ID:        id,
		OrderID:   n.OrderID,
		ProductID: n.ProductID,
		Quantity:  n.Quantity,
		Price:     n.Price,
	}
	if _, err := s.orderItems().InsertOne(ctx, it); err != nil {
		return nil, err
	}
	return &it, nil
}

// ----- cart items -----

func (s *MongoStore) cartItems() *mongo.Collection { return s.db.Collection("cart_items") }

func (s *MongoStore) ListCartItemsByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return findAll[model.CartItem](ctx, s.cartItems(), bson.M{"user_id": userID})
}

func (s *MongoStore) GetCartItemByUserAndProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	return findOne[model.CartItem](ctx, s.cartItems(), bson.M{"user_id": userID, "product_id": productID})
}

func (s *MongoStore) CreateCartItem(ctx context.Context, n model.NewCartItem) (*model.CartItem, error) {
	id, err := s.nextID(ctx, "cart_items")
	if err != nil {
		return nil, err
	}
	ci := model.CartItem{ID: id, UserID: n.UserID, ProductID: n.ProductID, Quantity: n.Quantity}
	if _, err := s.cartItems().InsertOne(ctx, ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

func (s *MongoStore) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*model.CartItem, error) {
	var ci model.CartItem
	err := s.cartItems().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"quantity": quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ci)
	if err != nil {
		return nil, mongoTranslate(err)
	}
	return &ci, nil
}

func (s *MongoStore) DeleteCartItem(ctx context.Context, id int64) (bool, error) {
	res, err := s.cartItems().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) ClearCart(ctx context.Context, userID int64) (bool, error) {
	res, err := s.cartItems().DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
