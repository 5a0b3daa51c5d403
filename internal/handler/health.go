package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkurov/storefront/internal/store"
)

// Health reports liveness plus which storage backend the process ended
// up on, so a fallback to the in-memory store is visible to operators.
func Health(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "backend": st.Name()})
	}
}
