package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkurov/storefront/internal/checkout"
	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/queue"
	"github.com/mkurov/storefront/internal/store"
)

// OrderHandler serves order placement and history.  Placement computes
// the total from the live cart at current effective prices, then hands
// the fixed total to the checkout service.
type OrderHandler struct {
	Store    store.Store
	Checkout *checkout.Service
	// PublishEvents toggles the order.placed broker notification; off
	// in tests.
	PublishEvents bool
}

func NewOrderHandler(st store.Store, svc *checkout.Service, publish bool) *OrderHandler {
	return &OrderHandler{Store: st, Checkout: svc, PublishEvents: publish}
}

type placeOrderReq struct {
	Address string `json:"address"`
}

// PlaceOrder handles POST /v1/orders.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	total, err := h.Checkout.CartTotal(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	order, err := h.Checkout.PlaceOrder(ctx, userID, total, req.Address)
	if errors.Is(err, checkout.ErrEmptyCart) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}

	if h.PublishEvents {
		items, _ := h.Store.ListOrderItemsByOrder(ctx, order.ID)
		ev := queue.OrderPlacedEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Total:     order.Total,
			LineCount: len(items),
			Address:   order.Address,
			PlacedAt:  order.CreatedAt.Format(time.RFC3339),
		}
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pcancel()
			if err := queue.PublishOrderPlaced(pctx, ev); err != nil {
				log.Printf("orders: publish order.placed for order %d failed: %v", ev.OrderID, err)
			}
		}()
	}

	return c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /v1/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orders)
}

type orderDetail struct {
	model.Order
	Items []model.OrderItem `json:"items"`
}

// GetOrder handles GET /v1/orders/:id, items included.  Orders belong
// to their creator; everyone else gets a 404 rather than a hint that
// the id exists.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	order, err := h.Store.GetOrderByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	isAdmin, _ := c.Get("is_admin").(bool)
	if order.UserID != userID && !isAdmin {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	items, err := h.Store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orderDetail{Order: *order, Items: items})
}
