package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sudo-init-do/libhub/internal/auth"
	"github.com/sudo-init-do/libhub/internal/config"
)

// SessionVerifier validates the bearer token on every protected request and
// attaches the decoded identity to the request context. No handler behind it
// runs without a valid token.
func SessionVerifier(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
		}

		claims, err := auth.VerifyToken(parts[1], []byte(config.C.JWTSecret))
		if err != nil {
			if !errors.Is(err, auth.ErrTokenExpired) {
				log.Debug().Err(err).Msg("token verification failed")
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("roles", claims.Roles)
		return next(c)
	}
}
