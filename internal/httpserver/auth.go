package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/catalog/internal/middleware/auth"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

const (
	MsgCredentialsRequired = "Username and password are required"
	MsgInvalidCredentials  = "Invalid username or password"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, MsgCredentialsRequired)
	}

	sess, err := h.Svc.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 400, "reason", "missing credentials")
			return echo.NewHTTPError(http.StatusBadRequest, MsgCredentialsRequired)
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
		default:
			l.Error("login_error", "status", 500, "reason", "cannot authenticate", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, MsgInternal).SetInternal(err)
		}
	}

	l.Info("login_success", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.MsgAccessTokenRequired)
	}
	return c.JSON(http.StatusOK, identity)
}
