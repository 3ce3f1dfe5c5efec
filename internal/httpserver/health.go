package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/store"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

type HealthHTTP struct {
	Store store.Store
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("ready_error", "status", 503, "reason", "store unreachable", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"store": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"store": "ok"})
}
