package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	search := c.QueryParam("search")
	items, err := h.Svc.ListProducts(ctx, search)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgInternal).SetInternal(err)
	}

	l.Debug("get_products_success", "search", search, "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, service.ReasonNameAndPriceRequired)
	}

	prod, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			l.Warn("create_product_error", "status", 400, "reason", ve.Reason)
			return echo.NewHTTPError(http.StatusBadRequest, ve.Reason)
		}
		l.Error("create_product_error", "status", 500, "reason", "cannot store product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgInternal).SetInternal(err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}
