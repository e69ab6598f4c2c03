package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGuard(t *testing.T, mw echo.MiddlewareFunc, roles []string, userID, paramID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set("roles", roles)
	}
	if userID != "" {
		c.Set("user_id", userID)
	}
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireRoles_Allowed(t *testing.T) {
	t.Parallel()

	rec := runGuard(t, RequireRoles("admin"), []string{"admin"}, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_Intersection(t *testing.T) {
	t.Parallel()

	// Multi-role user matching one of several accepted roles.
	rec := runGuard(t, RequireRoles("admin", "author"), []string{"reader", "author"}, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_Denied(t *testing.T) {
	t.Parallel()

	rec := runGuard(t, RequireRoles("admin"), []string{"reader"}, "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestRequireRoles_NoRoles(t *testing.T) {
	t.Parallel()

	rec := runGuard(t, RequireRoles("admin"), nil, "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSelfOrRoles_OwnershipOverride(t *testing.T) {
	t.Parallel()

	// A reader accessing their own resource bypasses the role check.
	rec := runGuard(t, SelfOrRoles("admin"), []string{"reader"}, "u1", "u1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSelfOrRoles_OtherUserDenied(t *testing.T) {
	t.Parallel()

	rec := runGuard(t, SelfOrRoles("admin"), []string{"reader"}, "u1", "u2")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSelfOrRoles_AdminOnOtherUser(t *testing.T) {
	t.Parallel()

	rec := runGuard(t, SelfOrRoles("admin"), []string{"admin"}, "u1", "u2")
	assert.Equal(t, http.StatusOK, rec.Code)
}
