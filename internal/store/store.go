// Package store defines the storage port shared by all persistence
// backends and its three implementations (in-memory, MySQL, MongoDB).
// Every adapter exposes identical observable behavior; they differ only
// in physical representation and in how unique ids are generated.
package store

import (
	"context"
	"errors"

	"github.com/mkurov/storefront/internal/model"
)

// ErrNotFound is returned by get-by-key operations when no record
// matches.  Callers branch on it with errors.Is; absence is never a
// panic or a backend failure.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a backend with native uniqueness
// constraints rejects an insert.  Uniqueness pre-checks remain the
// caller's responsibility; this error only surfaces the race loser on
// backends that can detect it.
var ErrDuplicate = errors.New("store: duplicate key")

// ErrUnavailable is returned when the backend cannot be reached for an
// operation.  It is fatal to the request; fallback to the in-memory
// adapter happens only at process startup, never mid-request.
var ErrUnavailable = errors.New("store: backend unavailable")

// Store is the operation contract every backend implements.  All
// methods are safe for concurrent use.  List operations return
// possibly-empty slices; only the in-memory adapter guarantees
// insertion order.  Create operations assign ids through the backend's
// sequence generator and return the persisted record.
type Store interface {
	// Name identifies the active backend ("memory", "mysql", "mongo").
	Name() string

	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, n model.NewUser) (*model.User, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CreateCategory(ctx context.Context, n model.NewCategory) (*model.Category, error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
	// ListProductsByIDs resolves a batch of product ids in one call.
	// Ids that no longer resolve are simply absent from the result.
	ListProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	CreateProduct(ctx context.Context, n model.NewProduct) (*model.Product, error)

	ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*model.Order, error)
	CreateOrder(ctx context.Context, n model.NewOrder) (*model.Order, error)

	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	CreateOrderItem(ctx context.Context, n model.NewOrderItem) (*model.OrderItem, error)

	ListCartItemsByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	GetCartItemByUserAndProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	CreateCartItem(ctx context.Context, n model.NewCartItem) (*model.CartItem, error)
	// UpdateCartItemQuantity sets the quantity on an existing line and
	// returns the updated line, or ErrNotFound if the line is gone.
	UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*model.CartItem, error)
	// DeleteCartItem reports whether a line was actually removed.
	DeleteCartItem(ctx context.Context, id int64) (bool, error)
	// ClearCart removes every cart line for the user and reports
	// whether any line existed.
	ClearCart(ctx context.Context, userID int64) (bool, error)

	Close(ctx context.Context) error
}
