package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
)

// CatalogHandler serves category and product browsing plus the
// admin-only create endpoints.  Browse responses are cached by the
// response-cache middleware, not here.
type CatalogHandler struct {
	Store store.Store
}

func NewCatalogHandler(st store.Store) *CatalogHandler { return &CatalogHandler{Store: st} }

// ListCategories handles GET /v1/categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Store.ListCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, cats)
}

// GetCategory handles GET /v1/categories/:slug.
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Store.GetCategoryBySlug(ctx, c.Param("slug"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, cat)
}

// ListProducts handles GET /v1/products.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /v1/products/:slug.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Store.GetProductBySlug(ctx, c.Param("slug"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, p)
}

// ListCategoryProducts handles GET /v1/categories/:slug/products.
func (h *CatalogHandler) ListCategoryProducts(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Store.GetCategoryBySlug(ctx, c.Param("slug"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	products, err := h.Store.ListProductsByCategory(ctx, cat.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, products)
}

// ----- admin -----

type createCategoryReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateCategory handles POST /v1/admin/categories.  Slug uniqueness is
// pre-checked the same way the auth handler pre-checks usernames.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req createCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/slug required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Store.GetCategoryBySlug(ctx, req.Slug); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	cat, err := h.Store.CreateCategory(ctx, model.NewCategory{Name: req.Name, Slug: req.Slug})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, cat)
}

type createProductReq struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	IsOnSale    bool     `json:"is_on_sale"`
	SalePrice   *float64 `json:"sale_price"`
	Stock       int      `json:"stock"`
	CategoryID  int64    `json:"category_id"`
	ImageURL    string   `json:"image_url"`
}

// CreateProduct handles POST /v1/admin/products.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/slug required"})
	}
	if req.Price < 0 || req.Stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price/stock must be non-negative"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Store.GetProductBySlug(ctx, req.Slug); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// Advisory reference check; two of the three backends have no
	// foreign keys, so a missing category is answered here.
	if _, err := h.Store.GetCategoryByID(ctx, req.CategoryID); errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	p, err := h.Store.CreateProduct(ctx, model.NewProduct{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		IsOnSale:    req.IsOnSale,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	return c.JSON(http.StatusCreated, p)
}
