package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

// GET /auth/me returns the public fields of the authenticated user.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	var u user.User
	err := db.Conn.QueryRow(c.Request().Context(), `
		SELECT id, username, email, roles, COALESCE(avatar_url, ''), created_at
		FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.Email, &u.Roles, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	return c.JSON(http.StatusOK, u)
}
