package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/user"
)

// RequireRoles allows the request iff the identity's role set intersects
// the required set. Runs after SessionVerifier.
// Usage: route(..., RequireRoles("admin"))
func RequireRoles(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			if len(roles) == 0 {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			for _, r := range required {
				if user.HasRole(roles, r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}

// SelfOrRoles is RequireRoles with an ownership override: when the :id path
// parameter matches the requester's own id, the role check is bypassed.
// Used on self-service endpoints (profile get/update).
func SelfOrRoles(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get("user_id").(string)
			if userID != "" && userID == c.Param("id") {
				return next(c)
			}
			roles, _ := c.Get("roles").([]string)
			for _, r := range required {
				if user.HasRole(roles, r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}
