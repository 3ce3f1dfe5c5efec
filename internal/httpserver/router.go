package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "github.com/Skotchmaster/catalog/internal/middleware/auth"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/store"
	loggingmw "github.com/Skotchmaster/catalog/pkg/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	SeedHandler    *SeedHTTP
	HealthHandler  *HealthHTTP
	Authorizer     middleware.Authorizer
	BasePath       string
}

func NewDeps(repo store.Store, auth *service.AuthService, catalog *service.CatalogService, seeder *service.Seeder, basePath string) *Deps {
	return &Deps{
		AuthHandler:    &AuthHTTP{Svc: auth},
		CatalogHandler: &CatalogHTTP{Svc: catalog},
		SeedHandler:    &SeedHTTP{Seeder: seeder},
		HealthHandler:  &HealthHTTP{Store: repo},
		Authorizer:     auth,
		BasePath:       basePath,
	}
}

// New returns an echo instance with the middleware stack and routes installed.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)

	api := e.Group(strings.TrimRight(d.BasePath, "/"))

	api.POST("/login", d.AuthHandler.Login)
	api.POST("/seed", d.SeedHandler.Seed)

	authMW := middleware.NewBearerAuth(d.Authorizer)

	api.GET("/me", d.AuthHandler.Me, authMW.RequireAuth)
	api.GET("/products", d.CatalogHandler.GetProducts, authMW.RequireAuth)
	api.POST("/products", d.CatalogHandler.CreateProduct, authMW.RequireAuth, authMW.RequireAdmin)
}
