package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

type BootstrapAdminRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// POST /auth/bootstrap-admin grants the admin role to an existing user.
// Guarded by a shared secret; disabled when the secret is not configured.
func BootstrapAdmin(c echo.Context) error {
	req := new(BootstrapAdminRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if config.C.AdminBootstrapSecret == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "bootstrap disabled"})
	}
	if req.Secret == "" ||
		subtle.ConstantTimeCompare([]byte(req.Secret), []byte(config.C.AdminBootstrapSecret)) != 1 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid secret"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ct, err := db.Conn.Exec(c.Request().Context(), `
		UPDATE users SET roles = array_append(roles, $1), updated_at = NOW()
		WHERE email = $2 AND NOT ($1 = ANY(roles))
	`, user.RoleAdmin, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to promote user"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found or already admin"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user promoted to admin", "email": req.Email})
}
