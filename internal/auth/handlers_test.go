package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/user"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestLogin_UnknownUserAndWrongPasswordAreIndistinguishable(t *testing.T) {
	old := findCredentials
	t.Cleanup(func() { findCredentials = old })

	// Unknown username.
	findCredentials = func(context.Context, string) (user.User, string, error) {
		return user.User{}, "", errors.New("no rows in result set")
	}
	unknown := postJSON(t, Login, `{"username":"ghost","password":"whatever"}`)

	// Known username, wrong password.
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)
	findCredentials = func(context.Context, string) (user.User, string, error) {
		return user.User{ID: "u1", Username: "alice", Email: "a@x.com",
			Roles: []string{user.RoleReader}}, string(hash), nil
	}
	wrongPassword := postJSON(t, Login, `{"username":"alice","password":"wrong"}`)

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
	assert.Contains(t, unknown.Body.String(), "Invalid credentials")
}

func TestLogin_Success(t *testing.T) {
	oldFind, oldCfg := findCredentials, config.C
	t.Cleanup(func() { findCredentials, config.C = oldFind, oldCfg })

	config.C = &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	findCredentials = func(context.Context, string) (user.User, string, error) {
		return user.User{ID: "u1", Username: "alice", Email: "a@x.com",
			Roles: []string{user.RoleReader}, CreatedAt: time.Now()}, string(hash), nil
	}

	rec := postJSON(t, Login, `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	claims, err := VerifyToken(out.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{user.RoleReader}, claims.Roles)
}

func TestRegister_DuplicateUsernameConflicts(t *testing.T) {
	old := usernameOrEmailTaken
	t.Cleanup(func() { usernameOrEmailTaken = old })

	// Same username, different email still collides on the unique field.
	usernameOrEmailTaken = func(context.Context, string, string) bool { return true }

	rec := postJSON(t, Register, `{"username":"alice","email":"other@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already taken")
}

func TestBootstrapAdmin_RejectsWrongSecret(t *testing.T) {
	oldCfg := config.C
	t.Cleanup(func() { config.C = oldCfg })
	config.C = &config.Config{AdminBootstrapSecret: "letmein"}

	rec := postJSON(t, BootstrapAdmin, `{"email":"a@x.com","secret":"nope"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBootstrapAdmin_DisabledWithoutSecret(t *testing.T) {
	oldCfg := config.C
	t.Cleanup(func() { config.C = oldCfg })
	config.C = &config.Config{}

	rec := postJSON(t, BootstrapAdmin, `{"email":"a@x.com","secret":"anything"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "bootstrap disabled")
}
