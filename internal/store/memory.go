package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mkurov/storefront/internal/model"
)

// MemoryStore keeps every collection in process memory.  It is the
// zero-configuration default and the fallback target when the durable
// backend is unreachable at startup.  All data is lost on restart.
//
// A single RWMutex guards the maps and the per-collection id counters,
// so the counters are trivially race-free: an id is allocated and its
// record inserted under one critical section.
type MemoryStore struct {
	mu         sync.RWMutex
	counters   map[string]int64
	users      map[int64]model.User
	categories map[int64]model.Category
	products   map[int64]model.Product
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
	cartItems  map[int64]model.CartItem
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters:   make(map[string]int64),
		users:      make(map[int64]model.User),
		categories: make(map[int64]model.Category),
		products:   make(map[int64]model.Product),
		orders:     make(map[int64]model.Order),
		orderItems: make(map[int64]model.OrderItem),
		cartItems:  make(map[int64]model.CartItem),
	}
}

func (s *MemoryStore) Name() string { return "memory" }

// nextID allocates the next id for a collection.  Ids start at 1,
// strictly increase and are never reused.  Callers must hold s.mu.
func (s *MemoryStore) nextID(collection string) int64 {
	s.counters[collection]++
	return s.counters[collection]
}

// sortedIDs returns the map keys in ascending order.  Because ids are
// assigned monotonically, ascending id order is insertion order.
func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ----- users -----

func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedIDs(s.users) {
		if u := s.users[id]; u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedIDs(s.users) {
		if u := s.users[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(ctx context.Context, n model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{
		ID:           s.nextID("users"),
		Username:     n.Username,
		Email:        n.Email,
		PasswordHash: n.PasswordHash,
		FirstName:    n.FirstName,
		LastName:     n.LastName,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	return &u, nil
}

// ----- categories -----

func (s *MemoryStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, 0, len(s.categories))
	for _, id := range sortedIDs(s.categories) {
		out = append(out, s.categories[id])
	}
	return out, nil
}

func (s *MemoryStore) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.categories[id]; ok {
		return &c, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedIDs(s.categories) {
		if c := s.categories[id]; c.Slug == slug {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCategory(ctx context.Context, n model.NewCategory) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Category{ID: s.nextID("categories"), Name: n.Name, Slug: n.Slug}
	s.categories[c.ID] = c
	return &c, nil
}

// ----- products -----

func (s *MemoryStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.products))
	for _, id := range sortedIDs(s.products) {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *MemoryStore) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedIDs(s.products) {
		if p := s.products[id]; p.Slug == slug {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Product{}
	for _, id := range sortedIDs(s.products) {
		if p := s.products[id]; p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, n model.NewProduct) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Product{
		ID:          s.nextID("products"),
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
	s.products[p.ID] = p
	return &p, nil
}

// DeleteProduct removes a product.  It exists so tests can model a
// product vanishing between cart-add and checkout; the HTTP layer does
// not expose it.
func (s *MemoryStore) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// ----- orders -----

func (s *MemoryStore) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Order{}
	for _, id := range sortedIDs(s.orders) {
		if o := s.orders[id]; o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.orders[id]; ok {
		return &o, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateOrder(ctx context.Context, n model.NewOrder) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := model.Order{
		ID:        s.nextID("orders"),
		UserID:    n.UserID,
		Total:     n.Total,
		Status:    n.Status,
		Address:   n.Address,
		CreatedAt: time.Now().UTC(),
	}
	s.orders[o.ID] = o
	return &o, nil
}

// ----- order items -----

func (s *MemoryStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.OrderItem{}
	for _, id := range sortedIDs(s.orderItems) {
		if it := s.orderItems[id]; it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateOrderItem(ctx context.Context, n model.NewOrderItem) (*model.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := model.OrderItem{
		ID:        s.nextID("order_items"),
		OrderID:   n.OrderID,
		ProductID: n.ProductID,
		Quantity:  n.Quantity,
		Price:     n.Price,
	}
	s.orderItems[it.ID] = it
	return &it, nil
}

// ----- cart items -----

func (s *MemoryStore) ListCartItemsByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.CartItem{}
	for _, id := range sortedIDs(s.cartItems) {
		if ci := s.cartItems[id]; ci.UserID == userID {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCartItemByUserAndProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedIDs(s.cartItems) {
		if ci := s.cartItems[id]; ci.UserID == userID && ci.ProductID == productID {
			return &ci, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCartItem(ctx context.Context, n model.NewCartItem) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci := model.CartItem{
		ID:        s.nextID("cart_items"),
		UserID:    n.UserID,
		ProductID: n.ProductID,
		Quantity:  n.Quantity,
	}
	s.cartItems[ci.ID] = ci
	return &ci, nil
}

func (s *MemoryStore) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.cartItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	ci.Quantity = quantity
	s.cartItems[id] = ci
	return &ci, nil
}

func (s *MemoryStore) DeleteCartItem(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cartItems[id]; !ok {
		return false, nil
	}
	delete(s.cartItems, id)
	return true, nil
}

func (s *MemoryStore) ClearCart(ctx context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for id, ci := range s.cartItems {
		if ci.UserID == userID {
			delete(s.cartItems, id)
			removed = true
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }
