package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// findCredentials looks up a user and the stored password hash by username.
// Swapped in tests.
var findCredentials = func(ctx context.Context, username string) (user.User, string, error) {
	var u user.User
	var hashed string
	err := db.Conn.QueryRow(ctx, `
		SELECT id, username, email, password, roles, COALESCE(avatar_url, ''), created_at
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &hashed, &u.Roles, &u.AvatarURL, &u.CreatedAt)
	return u, hashed, err
}

// POST /auth/login
//
// Unknown username and wrong password take the same exit so the
// responses are indistinguishable to the caller.
func Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	u, hashed, err := findCredentials(c.Request().Context(), req.Username)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}

	token, err := IssueToken(u.ID, u.Username, u.Email, u.Roles, []byte(config.C.JWTSecret), config.C.TokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  u,
	})
}
