package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurov/storefront/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestMemoryCreateGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.NewUser{Username: "ada", Email: "ada@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.False(t, u.IsAdmin)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	cat, err := s.CreateCategory(ctx, model.NewCategory{Name: "Books", Slug: "books"})
	require.NoError(t, err)
	gotCat, err := s.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, cat, gotCat)

	p, err := s.CreateProduct(ctx, model.NewProduct{
		Name: "Thing", Slug: "thing", Price: 10, IsOnSale: true, SalePrice: ptr(8), CategoryID: cat.ID,
	})
	require.NoError(t, err)
	gotP, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, gotP)
	assert.Equal(t, 8.0, gotP.EffectivePrice())

	o, err := s.CreateOrder(ctx, model.NewOrder{UserID: u.ID, Total: 8, Status: model.OrderStatusPending, Address: "1 Main St"})
	require.NoError(t, err)
	gotO, err := s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, gotO)
	assert.False(t, gotO.CreatedAt.IsZero())
}

func TestMemoryGetByUniqueKeys(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetProductBySlug(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetCategoryBySlug(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := s.CreateUser(ctx, model.NewUser{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	byName, err := s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestMemorySequenceConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ci, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 1, ProductID: int64(i) + 1000, Quantity: 1})
			assert.NoError(t, err)
			ids <- ci.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	// n distinct values, no gaps: exactly 1..n.
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing id %d", i)
	}
}

func TestMemorySequenceNeverReused(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 1, ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	removed, err := s.DeleteCartItem(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	second, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 1, ProductID: 2, Quantity: 1})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestMemoryCartCheckThenCreate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetCartItemByUserAndProduct(ctx, 7, 3)
	require.ErrorIs(t, err, ErrNotFound)

	created, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 7, ProductID: 3, Quantity: 2})
	require.NoError(t, err)

	got, err := s.GetCartItemByUserAndProduct(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	items, err := s.ListCartItemsByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryUpdateCartItemQuantity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.UpdateCartItemQuantity(ctx, 99, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	ci, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 1, ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	updated, err := s.UpdateCartItemQuantity(ctx, ci.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	got, err := s.GetCartItemByUserAndProduct(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
}

func TestMemoryClearCartLeavesOtherUsers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		_, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 1, ProductID: i, Quantity: 1})
		require.NoError(t, err)
	}
	_, err := s.CreateCartItem(ctx, model.NewCartItem{UserID: 2, ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	removed, err := s.ClearCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	mine, err := s.ListCartItemsByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := s.ListCartItemsByUser(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	// Clearing an empty cart reports nothing removed.
	removed, err = s.ClearCart(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryListProductsByIDsSkipsMissing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p1, err := s.CreateProduct(ctx, model.NewProduct{Name: "A", Slug: "a", Price: 1})
	require.NoError(t, err)
	p2, err := s.CreateProduct(ctx, model.NewProduct{Name: "B", Slug: "b", Price: 2})
	require.NoError(t, err)

	got, err := s.ListProductsByIDs(ctx, []int64{p1.ID, 42, p2.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, p1.ID, got[0].ID)
	assert.Equal(t, p2.ID, got[1].ID)

	empty, err := s.ListProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryListInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	slugs := []string{"c", "a", "b"}
	for _, slug := range slugs {
		_, err := s.CreateProduct(ctx, model.NewProduct{Name: slug, Slug: slug, Price: 1})
		require.NoError(t, err)
	}
	all, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, slug := range slugs {
		assert.Equal(t, slug, all[i].Slug)
	}
}

func TestOpenFallsBackToMemory(t *testing.T) {
	// Nil handles mean the durable backend was unreachable at startup.
	assert.Equal(t, "memory", Open(BackendMySQL, nil, nil).Name())
	assert.Equal(t, "memory", Open(BackendMongo, nil, nil).Name())
	assert.Equal(t, "memory", Open(BackendMemory, nil, nil).Name())
	assert.Equal(t, "memory", Open("bogus", nil, nil).Name())
}
