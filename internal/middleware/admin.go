package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin aborts the request with 403 unless the JWTAuth
// middleware stored a true admin flag in the context.  The admin flag
// is immutable through the public API, so this gate is the only path
// to catalog administration.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, ok := c.Get("is_admin").(bool)
			if !ok || !isAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
