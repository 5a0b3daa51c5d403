// Package checkout implements the cart-to-order conversion.  It is the
// one multi-step workflow in the system that needs cross-entity
// consistency, and two of the three backends have no transaction
// primitive, so its failure semantics are deliberate: order creation is
// the commit point, later per-line failures are skipped rather than
// rolled back, and the cart clear is unconditional.
package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
)

// ErrEmptyCart is returned when checkout is attempted with no cart
// lines.  Nothing is created in that case.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// Service runs order placement against the active backend.
type Service struct {
	store store.Store
}

// NewService returns a Service bound to the given store.
func NewService(st store.Store) *Service { return &Service{store: st} }

// CartTotal computes the current value of the user's cart: the sum of
// quantity times effective price over every line whose product still
// resolves.  Callers use it to fix the order total before PlaceOrder.
func (s *Service) CartTotal(ctx context.Context, userID int64) (float64, error) {
	items, err := s.store.ListCartItemsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	products, err := s.resolveProducts(ctx, items)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, line := range items {
		if p, ok := products[line.ProductID]; ok {
			total += float64(line.Quantity) * p.EffectivePrice()
		}
	}
	return total, nil
}

// PlaceOrder converts the user's cart into an order.
//
// Steps, in strict sequence for one request:
//
//  1. Reject an empty cart with ErrEmptyCart; no side effects.
//  2. Create the order with status "pending" and the caller-supplied
//     total.  A failure here aborts the whole operation.  Success is
//     the commit point: from here on the order exists and stays.
//  3. Batch-resolve all distinct product ids referenced by the cart in
//     one call.
//  4. Create one order item per cart line, snapshotting the product's
//     effective price at this instant.  Lines whose product no longer
//     resolves are skipped silently; per-line write failures are logged
//     and skipped.  Neither aborts the order.
//  5. Clear the cart unconditionally.
//
// Two concurrent checkouts by the same user race on cart state; the
// last clear wins and double submission is not de-duplicated.  Order
// items are fetched by the caller afterwards via ListOrderItemsByOrder.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, total float64, address string) (*model.Order, error) {
	items, err := s.store.ListCartItemsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := s.store.CreateOrder(ctx, model.NewOrder{
		UserID:  userID,
		Total:   total,
		Status:  model.OrderStatusPending,
		Address: address,
	})
	if err != nil {
		return nil, err
	}

	products, err := s.resolveProducts(ctx, items)
	if err != nil {
		// The order already exists; losing product resolution only
		// means every line is skipped, same as a vanished product.
		log.Printf("checkout: order %d: product resolution failed: %v", order.ID, err)
		products = map[int64]model.Product{}
	}

	for _, line := range items {
		p, ok := products[line.ProductID]
		if !ok {
			continue
		}
		_, err := s.store.CreateOrderItem(ctx, model.NewOrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     p.EffectivePrice(),
		})
		if err != nil {
			log.Printf("checkout: order %d: skipping line for product %d: %v", order.ID, line.ProductID, err)
		}
	}

	if _, err := s.store.ClearCart(ctx, userID); err != nil {
		log.Printf("checkout: order %d: cart clear for user %d failed: %v", order.ID, userID, err)
	}

	return order, nil
}

// resolveProducts batch-fetches the distinct products referenced by the
// cart lines and indexes them by id.
func (s *Service) resolveProducts(ctx context.Context, items []model.CartItem) (map[int64]model.Product, error) {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, line := range items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	products, err := s.store.ListProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
