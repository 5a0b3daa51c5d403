package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
)

func ptr(v float64) *float64 { return &v }

// seedCart installs two products, one on sale at 8.00 against a 10.00
// list price and one at a plain 20.00, plus a cart holding two of the
// first and one of the second.
func seedCart(t *testing.T, st *store.MemoryStore, userID int64) (p1, p2 *model.Product) {
	t.Helper()
	ctx := context.Background()

	var err error
	p1, err = st.CreateProduct(ctx, model.NewProduct{
		Name: "Sale Item", Slug: "sale-item", Price: 10.00, IsOnSale: true, SalePrice: ptr(8.00),
	})
	require.NoError(t, err)
	p2, err = st.CreateProduct(ctx, model.NewProduct{
		Name: "Plain Item", Slug: "plain-item", Price: 20.00,
	})
	require.NoError(t, err)

	_, err = st.CreateCartItem(ctx, model.NewCartItem{UserID: userID, ProductID: p1.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = st.CreateCartItem(ctx, model.NewCartItem{UserID: userID, ProductID: p2.ID, Quantity: 1})
	require.NoError(t, err)
	return p1, p2
}

func TestPlaceOrderSnapshotsEffectivePrices(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()
	const userID = int64(1)

	p1, p2 := seedCart(t, st, userID)

	total, err := svc.CartTotal(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 36.00, total) // 2×8.00 + 1×20.00

	order, err := svc.PlaceOrder(ctx, userID, total, "1 Main St")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 36.00, order.Total)
	assert.Equal(t, userID, order.UserID)
	assert.False(t, order.CreatedAt.IsZero())

	items, err := st.ListOrderItemsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	prices := map[int64]float64{}
	quantities := map[int64]int{}
	for _, it := range items {
		prices[it.ProductID] = it.Price
		quantities[it.ProductID] = it.Quantity
	}
	assert.Equal(t, 8.00, prices[p1.ID])
	assert.Equal(t, 2, quantities[p1.ID])
	assert.Equal(t, 20.00, prices[p2.ID])
	assert.Equal(t, 1, quantities[p2.ID])

	cart, err := st.ListCartItemsByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart, "cart must be cleared after checkout")

	orders, err := st.ListOrdersByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 1, "exactly one order per checkout")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, 1, 0, "1 Main St")
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := st.ListOrdersByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders, "empty-cart checkout must create nothing")
}

func TestPlaceOrderSkipsVanishedProduct(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()
	const userID = int64(1)

	p1, p2 := seedCart(t, st, userID)

	// The product disappears between cart-add and checkout.
	removed, err := st.DeleteProduct(ctx, p1.ID)
	require.NoError(t, err)
	require.True(t, removed)

	total, err := svc.CartTotal(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20.00, total, "vanished line contributes nothing")

	order, err := svc.PlaceOrder(ctx, userID, total, "1 Main St")
	require.NoError(t, err, "a vanished product must not fail the order")

	items, err := st.ListOrderItemsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p2.ID, items[0].ProductID)
	assert.Equal(t, 20.00, items[0].Price)

	cart, err := st.ListCartItemsByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart, "cart is cleared even when lines were skipped")
}

func TestPlaceOrderPriceSnapshotSurvivesSaleEnd(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()
	const userID = int64(1)

	p1, _ := seedCart(t, st, userID)

	order, err := svc.PlaceOrder(ctx, userID, 36.00, "1 Main St")
	require.NoError(t, err)

	items, err := st.ListOrderItemsByOrder(ctx, order.ID)
	require.NoError(t, err)

	// Order items carry their own price copies; re-reading them later
	// must return the checkout-time snapshot regardless of catalog
	// state.
	for _, it := range items {
		if it.ProductID == p1.ID {
			assert.Equal(t, 8.00, it.Price)
		}
	}
	again, err := st.ListOrderItemsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, items, again)
}

func TestPlaceOrderDistinctProductsFetchedOnce(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()
	const userID = int64(1)

	p, err := st.CreateProduct(ctx, model.NewProduct{Name: "Only", Slug: "only", Price: 5.00})
	require.NoError(t, err)
	_, err = st.CreateCartItem(ctx, model.NewCartItem{UserID: userID, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, userID, 15.00, "1 Main St")
	require.NoError(t, err)

	items, err := st.ListOrderItemsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 5.00, items[0].Price)
}
