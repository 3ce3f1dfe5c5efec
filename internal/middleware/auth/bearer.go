package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

const (
	MsgAccessTokenRequired = "Access token required"
	MsgInvalidToken        = "Invalid or expired token"
	MsgAdminRequired       = "Admin access required"

	identityKey = "identity"
)

// Authorizer decodes bearer tokens and decides role checks. It is satisfied
// by *service.AuthService.
type Authorizer interface {
	Verify(ctx context.Context, rawToken string) (*models.Identity, error)
	RequireRole(identity *models.Identity, role models.Role) error
}

type BearerAuth struct {
	Auth Authorizer
}

func NewBearerAuth(a Authorizer) *BearerAuth {
	return &BearerAuth{Auth: a}
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the decoded identity on the context.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "bearer_auth")

		raw := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			l.Warn("auth_error", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, MsgAccessTokenRequired)
		}

		identity, err := m.Auth.Verify(ctx, raw)
		if err != nil {
			l.Warn("auth_error", "status", 401, "reason", "token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
		}

		setIdentity(c, identity)
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func (m *BearerAuth) RequireRole(role models.Role, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgAccessTokenRequired)
			}
			if err := m.Auth.RequireRole(identity, role); err != nil {
				logging.FromContext(c.Request().Context()).Warn("auth_error",
					"status", 403, "reason", err.Error(), "role", identity.Role, "required", role)
				return echo.NewHTTPError(http.StatusForbidden, message)
			}
			return next(c)
		}
	}
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(models.RoleAdmin, MsgAdminRequired)(next)
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func IdentityFrom(c echo.Context) (*models.Identity, bool) {
	identity, ok := c.Get(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}

func setIdentity(c echo.Context, identity *models.Identity) {
	c.Set(identityKey, identity)
	c.Set("user_id", identity.ID)
	c.Set("role", string(identity.Role))

	l := logging.FromContext(c.Request().Context()).With("user_id", identity.ID)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))
}
