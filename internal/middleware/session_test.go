package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/libhub/internal/auth"
	"github.com/sudo-init-do/libhub/internal/config"
)

const testSecret = "test-secret"

func setTestConfig(t *testing.T) {
	t.Helper()
	old := config.C
	config.C = &config.Config{JWTSecret: testSecret, TokenTTL: time.Hour}
	t.Cleanup(func() { config.C = old })
}

func doRequest(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SessionVerifier(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestSessionVerifier_MissingToken(t *testing.T) {
	setTestConfig(t)

	rec, _ := doRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing token")
}

func TestSessionVerifier_BadHeaderFormat(t *testing.T) {
	setTestConfig(t)

	rec, _ := doRequest(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionVerifier_ValidToken(t *testing.T) {
	setTestConfig(t)

	tok, err := auth.IssueToken("u1", "alice", "a@x.com", []string{"reader"}, []byte(testSecret), time.Hour)
	require.NoError(t, err)

	rec, c := doRequest(t, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", c.Get("user_id"))
	assert.Equal(t, "alice", c.Get("username"))
	assert.Equal(t, "a@x.com", c.Get("email"))
	assert.Equal(t, []string{"reader"}, c.Get("roles"))
}

func TestSessionVerifier_ExpiredToken(t *testing.T) {
	setTestConfig(t)

	tok, err := auth.IssueToken("u1", "alice", "a@x.com", []string{"reader"}, []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	rec, _ := doRequest(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestSessionVerifier_WrongSignature(t *testing.T) {
	setTestConfig(t)

	tok, err := auth.IssueToken("u1", "alice", "a@x.com", []string{"reader"}, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	rec, _ := doRequest(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
