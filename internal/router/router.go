// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mkurov/storefront/internal/config"
	"github.com/mkurov/storefront/internal/handler"
	"github.com/mkurov/storefront/internal/middleware"
	"github.com/mkurov/storefront/internal/store"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg     config.Config
	Store   store.Store
	Redis   *redis.Client // may be nil; cache/ratelimit degrade to no-ops
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Orders  *handler.OrderHandler
}

// Register registers all application routes.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Store))

	// Auth endpoints: no JWT, but rate limited per client IP.
	limiter := middleware.NewRateLimit(config.LoadRateLimitConfig(), d.Redis)
	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	// Public catalog browsing, behind the response cache.
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), d.Redis)
	catalog := e.Group("/v1", cache)
	catalog.GET("/categories", d.Catalog.ListCategories)
	catalog.GET("/categories/:slug", d.Catalog.GetCategory)
	catalog.GET("/categories/:slug/products", d.Catalog.ListCategoryProducts)
	catalog.GET("/products", d.Catalog.ListProducts)
	catalog.GET("/products/:slug", d.Catalog.GetProduct)

	// Authenticated endpoints.
	jwt := middleware.JWTAuth(d.Cfg.JWTSecret)
	priv := e.Group("/v1", jwt)
	priv.GET("/me", d.Auth.Me)
	priv.GET("/cart", d.Cart.GetCart)
	priv.POST("/cart", d.Cart.AddToCart)
	priv.PATCH("/cart/:id", d.Cart.UpdateQuantity)
	priv.DELETE("/cart/:id", d.Cart.RemoveItem)
	priv.DELETE("/cart", d.Cart.Clear)
	priv.POST("/orders", d.Orders.PlaceOrder)
	priv.GET("/orders", d.Orders.ListOrders)
	priv.GET("/orders/:id", d.Orders.GetOrder)

	// Catalog administration.
	admin := e.Group("/v1/admin", jwt, middleware.RequireAdmin())
	admin.POST("/categories", d.Catalog.CreateCategory)
	admin.POST("/products", d.Catalog.CreateProduct)
}
