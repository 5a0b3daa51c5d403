package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurov/storefront/internal/checkout"
	"github.com/mkurov/storefront/internal/config"
	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
	"github.com/mkurov/storefront/internal/token"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4, // keep the tests fast
	}
}

// jsonCtx builds an echo context carrying a JSON body.
func jsonCtx(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, userID int64) {
	c.Set("user_id", userID)
	c.Set("is_admin", false)
}

func TestRegisterLoginMe(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	h := NewAuthHandler(testConfig(), st, token.NewStore(nil))

	c, rec := jsonCtx(e, http.MethodPost, "/v1/auth/register",
		`{"username":"ada","email":"Ada@Example.com","password":"pw12345","first_name":"Ada"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg struct {
		User struct {
			ID      int64  `json:"id"`
			Email   string `json:"email"`
			IsAdmin bool   `json:"is_admin"`
		} `json:"user"`
		Access  struct{ Token string } `json:"access"`
		Refresh struct{ Token string } `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, int64(1), reg.User.ID)
	assert.Equal(t, "ada@example.com", reg.User.Email, "email is normalized")
	assert.False(t, reg.User.IsAdmin)
	assert.NotEmpty(t, reg.Access.Token)
	assert.NotEmpty(t, reg.Refresh.Token)
	assert.NotContains(t, rec.Body.String(), "password", "hash must never leave the server")

	// Same username again is a conflict.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/auth/register",
		`{"username":"ada","email":"other@example.com","password":"pw12345"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login by username.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/auth/login",
		`{"username":"ada","password":"pw12345"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Login by email with wrong password.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/auth/login",
		`{"username":"ada@example.com","password":"nope"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Me.
	c, rec = jsonCtx(e, http.MethodGet, "/v1/me", "")
	asUser(c, reg.User.ID)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"ada"`)
}

func TestRefreshRotatesToken(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	h := NewAuthHandler(testConfig(), st, token.NewStore(nil))

	c, rec := jsonCtx(e, http.MethodPost, "/v1/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"pw12345"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg struct {
		Refresh struct{ Token string } `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	body := fmt.Sprintf(`{"refresh_token":%q}`, reg.Refresh.Token)
	c, rec = jsonCtx(e, http.MethodPost, "/v1/auth/refresh", body)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The old token was rotated out and cannot be used twice.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/auth/refresh", body)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func seedProduct(t *testing.T, st store.Store, slug string, price float64) *model.Product {
	t.Helper()
	p, err := st.CreateProduct(context.Background(), model.NewProduct{
		Name: slug, Slug: slug, Price: price, Stock: 10,
	})
	require.NoError(t, err)
	return p
}

func TestAddToCartBumpsExistingLine(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	h := NewCartHandler(st)
	p := seedProduct(t, st, "thing", 12.50)

	body := fmt.Sprintf(`{"product_id":%d,"quantity":2}`, p.ID)
	c, rec := jsonCtx(e, http.MethodPost, "/v1/cart", body)
	asUser(c, 1)
	require.NoError(t, h.AddToCart(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Adding the same product again must not create a second line.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/cart", body)
	asUser(c, 1)
	require.NoError(t, h.AddToCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	items, err := st.ListCartItemsByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	// Unknown product.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/cart", `{"product_id":999,"quantity":1}`)
	asUser(c, 1)
	require.NoError(t, h.AddToCart(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCartTotals(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	h := NewCartHandler(st)
	sale := 8.00
	p, err := st.CreateProduct(context.Background(), model.NewProduct{
		Name: "On Sale", Slug: "on-sale", Price: 10.00, IsOnSale: true, SalePrice: &sale,
	})
	require.NoError(t, err)
	_, err = st.CreateCartItem(context.Background(), model.NewCartItem{UserID: 1, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	c, rec := jsonCtx(e, http.MethodGet, "/v1/cart", "")
	asUser(c, 1)
	require.NoError(t, h.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			Subtotal float64 `json:"subtotal"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 24.00, resp.Items[0].Subtotal)
	assert.Equal(t, 24.00, resp.Total)
}

func TestCartOwnershipEnforced(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	h := NewCartHandler(st)
	p := seedProduct(t, st, "thing", 5)

	line, err := st.CreateCartItem(context.Background(), model.NewCartItem{UserID: 1, ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	// Another user cannot touch the line.
	c, rec := jsonCtx(e, http.MethodPatch, "/", `{"quantity":5}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(line.ID))
	asUser(c, 2)
	require.NoError(t, h.UpdateQuantity(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = jsonCtx(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(line.ID))
	asUser(c, 2)
	require.NoError(t, h.RemoveItem(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The owner can.
	c, rec = jsonCtx(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(line.ID))
	asUser(c, 1)
	require.NoError(t, h.RemoveItem(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPlaceOrderHandler(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	svc := checkout.NewService(st)
	h := NewOrderHandler(st, svc, false)

	sale := 8.00
	p1, err := st.CreateProduct(context.Background(), model.NewProduct{
		Name: "A", Slug: "a", Price: 10.00, IsOnSale: true, SalePrice: &sale,
	})
	require.NoError(t, err)
	p2 := seedProduct(t, st, "b", 20.00)
	_, err = st.CreateCartItem(context.Background(), model.NewCartItem{UserID: 1, ProductID: p1.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = st.CreateCartItem(context.Background(), model.NewCartItem{UserID: 1, ProductID: p2.ID, Quantity: 1})
	require.NoError(t, err)

	c, rec := jsonCtx(e, http.MethodPost, "/v1/orders", `{"address":"1 Main St"}`)
	asUser(c, 1)
	require.NoError(t, h.PlaceOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, 36.00, order.Total, "total is computed from live effective prices")
	assert.Equal(t, model.OrderStatusPending, order.Status)

	// Checkout with the now-empty cart fails cleanly.
	c, rec = jsonCtx(e, http.MethodPost, "/v1/orders", `{"address":"1 Main St"}`)
	asUser(c, 1)
	require.NoError(t, h.PlaceOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderHidesOtherUsers(t *testing.T) {
	e := echo.New()
	st := store.NewMemoryStore()
	h := NewOrderHandler(st, checkout.NewService(st), false)

	o, err := st.CreateOrder(context.Background(), model.NewOrder{
		UserID: 1, Total: 5, Status: model.OrderStatusPending, Address: "x",
	})
	require.NoError(t, err)

	c, rec := jsonCtx(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(o.ID))
	asUser(c, 2)
	require.NoError(t, h.GetOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code, "foreign orders look like missing orders")

	c, rec = jsonCtx(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(o.ID))
	asUser(c, 1)
	require.NoError(t, h.GetOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}
