package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/internal/models"
)

var errNotAllowed = errors.New("not allowed")

type stubAuthorizer struct {
	tokens map[string]*models.Identity
	// allowed overrides the role comparison when set.
	allowed    *bool
	roleChecks int
}

func (s *stubAuthorizer) Verify(_ context.Context, raw string) (*models.Identity, error) {
	if id, ok := s.tokens[raw]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func (s *stubAuthorizer) RequireRole(identity *models.Identity, role models.Role) error {
	s.roleChecks++
	if s.allowed != nil {
		if *s.allowed {
			return nil
		}
		return errNotAllowed
	}
	if identity.Role != role {
		return errNotAllowed
	}
	return nil
}

func newAuthorizer() *stubAuthorizer {
	return &stubAuthorizer{tokens: map[string]*models.Identity{
		"admin-token": {ID: "1", Username: "admin1", Role: models.RoleAdmin},
		"user-token":  {ID: "3", Username: "user1", Role: models.RoleUser},
	}}
}

func run(t *testing.T, authHeader string, chain func(echo.HandlerFunc) echo.HandlerFunc) (*httptest.ResponseRecorder, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := chain(func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		return c.String(http.StatusOK, id.Username)
	})(c)
	return rec, err, called
}

func statusOf(t *testing.T, err error) (int, any) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	return he.Code, he.Message
}

func TestRequireAuth(t *testing.T) {
	m := NewBearerAuth(newAuthorizer())

	tests := []struct {
		name   string
		header string
		code   int
		msg    string
	}{
		{name: "missing header", header: "", code: http.StatusUnauthorized, msg: MsgAccessTokenRequired},
		{name: "wrong scheme", header: "Basic dXNlcjE6dXNlcjEyMw==", code: http.StatusUnauthorized, msg: MsgAccessTokenRequired},
		{name: "empty bearer", header: "Bearer ", code: http.StatusUnauthorized, msg: MsgAccessTokenRequired},
		{name: "invalid token", header: "Bearer forged", code: http.StatusUnauthorized, msg: MsgInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err, called := run(t, tc.header, m.RequireAuth)
			assert.False(t, called)
			code, msg := statusOf(t, err)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.msg, msg)
		})
	}

	rec, err, called := run(t, "bearer user-token", m.RequireAuth)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "user1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	m := NewBearerAuth(newAuthorizer())
	chain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.RequireAuth(m.RequireAdmin(next))
	}

	_, err, called := run(t, "Bearer user-token", chain)
	assert.False(t, called)
	code, msg := statusOf(t, err)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, MsgAdminRequired, msg)

	rec, err, called := run(t, "Bearer admin-token", chain)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "admin1", rec.Body.String())
}

func TestRequireRole_DelegatesToAuthorizer(t *testing.T) {
	a := newAuthorizer()
	m := NewBearerAuth(a)
	chain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.RequireAuth(m.RequireAdmin(next))
	}

	deny := false
	a.allowed = &deny
	_, err, called := run(t, "Bearer admin-token", chain)
	assert.False(t, called)
	code, _ := statusOf(t, err)
	assert.Equal(t, http.StatusForbidden, code)

	allow := true
	a.allowed = &allow
	_, err, called = run(t, "Bearer user-token", chain)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 2, a.roleChecks)
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	a := newAuthorizer()
	m := NewBearerAuth(a)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := m.RequireAdmin(func(echo.Context) error { return nil })(c)
	code, _ := statusOf(t, err)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Zero(t, a.roleChecks)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  BEARER   abc "))
	assert.Equal(t, "", BearerToken("Bearer"))
	assert.Equal(t, "", BearerToken("Token abc"))
	assert.Equal(t, "", BearerToken(""))
}
