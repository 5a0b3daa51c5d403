package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mkurov/storefront/internal/config"
)

// NewRateLimit returns a fixed-window limiter keyed by client IP and
// route.  The window counter lives in Redis (INCR + EXPIRE on first
// hit), so the limit holds across replicas.  Redis errors let the
// request through: the limiter protects the auth endpoints, it is not
// allowed to take them down.  With no Redis client the middleware is a
// no-op.
func NewRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, ip, c.Path())
			ctx := c.Request().Context()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := int(cfg.Window.Seconds())
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retry = int(ttl.Seconds())
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
