package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
)

// CartHandler serves the per-user cart.  All endpoints require auth.
// The one-line-per-product invariant is kept by looking the line up
// before inserting; a repeated add bumps the existing quantity.
type CartHandler struct {
	Store store.Store
}

func NewCartHandler(st store.Store) *CartHandler { return &CartHandler{Store: st} }

type cartLine struct {
	ID       int64          `json:"id"`
	Quantity int            `json:"quantity"`
	Product  *model.Product `json:"product,omitempty"`
	Subtotal float64        `json:"subtotal"`
}
type cartResp struct {
	Items []cartLine `json:"items"`
	Total float64    `json:"total"`
}

// GetCart handles GET /v1/cart: the user's lines joined with product
// data and a total at current effective prices.  Lines whose product
// vanished are shown without product data and priced at zero.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Store.ListCartItemsByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := h.Store.ListProductsByIDs(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resp := cartResp{Items: make([]cartLine, 0, len(items))}
	for _, it := range items {
		line := cartLine{ID: it.ID, Quantity: it.Quantity}
		if p, ok := byID[it.ProductID]; ok {
			pp := p
			line.Product = &pp
			line.Subtotal = float64(it.Quantity) * p.EffectivePrice()
		}
		resp.Total += line.Subtotal
		resp.Items = append(resp.Items, line)
	}
	return c.JSON(http.StatusOK, resp)
}

type addToCartReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AddToCart handles POST /v1/cart.  Check-then-create: an existing line
// for the same product gets its quantity bumped instead of a duplicate
// row.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addToCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID <= 0 || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and quantity >= 1 required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Store.GetProductByID(ctx, req.ProductID); errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	existing, err := h.Store.GetCartItemByUserAndProduct(ctx, userID, req.ProductID)
	switch {
	case err == nil:
		updated, err := h.Store.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+req.Quantity)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cart failed"})
		}
		return c.JSON(http.StatusOK, updated)
	case errors.Is(err, store.ErrNotFound):
		created, err := h.Store.CreateCartItem(ctx, model.NewCartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add to cart failed"})
		}
		return c.JSON(http.StatusCreated, created)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// ownedCartItem resolves a :id path param to a cart line owned by the
// user.  The port has no get-cart-item-by-id, so ownership is checked
// against the user's own listing.
func (h *CartHandler) ownedCartItem(c echo.Context, userID int64) (*model.CartItem, int, string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, http.StatusBadRequest, "invalid cart item id"
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Store.ListCartItemsByUser(ctx, userID)
	if err != nil {
		return nil, http.StatusInternalServerError, "database error"
	}
	for _, it := range items {
		if it.ID == id {
			return &it, 0, ""
		}
	}
	return nil, http.StatusNotFound, "cart item not found"
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity handles PATCH /v1/cart/:id.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateQuantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity >= 1 required"})
	}
	item, status, msg := h.ownedCartItem(c, userID)
	if item == nil {
		return c.JSON(status, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	updated, err := h.Store.UpdateCartItemQuantity(ctx, item.ID, req.Quantity)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cart failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// RemoveItem handles DELETE /v1/cart/:id.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	item, status, msg := h.ownedCartItem(c, userID)
	if item == nil {
		return c.JSON(status, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	removed, err := h.Store.DeleteCartItem(ctx, item.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete cart item failed"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/cart.  Clearing an already-empty cart is
// fine and answers 204 like any other clear.
func (h *CartHandler) Clear(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Store.ClearCart(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear cart failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
