package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// currentUserID reads the authenticated user id stored by the JWTAuth
// middleware.
func currentUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get("user_id").(int64)
	return id, ok && id > 0
}

// reqCtx derives a bounded context from the request for store calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
