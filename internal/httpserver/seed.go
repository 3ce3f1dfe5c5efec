package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

type SeedHTTP struct {
	Seeder *service.Seeder
}

func (h *SeedHTTP) Seed(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "seed")

	res, err := h.Seeder.Seed(ctx)
	if err != nil {
		l.Error("seed_error", "status", 500, "reason", "cannot seed store", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgInternal).SetInternal(err)
	}

	l.Info("seed_success", "users_created", res.UsersCreated, "products_created", res.ProductsCreated)
	return c.JSON(http.StatusOK, transport.SeedResponse{
		Message:  "Database seeded successfully",
		Users:    seedState(res.UsersCreated),
		Products: seedState(res.ProductsCreated),
	})
}

func seedState(created bool) string {
	if created {
		return "Created"
	}
	return "Already exist"
}
