package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/libhub/internal/alerts"
	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/db"
)

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

const resetMessage = "If the email exists, a reset link has been sent."

// POST /auth/password/request
// Always responds with the same message to avoid user enumeration.
func RequestPasswordReset(c echo.Context) error {
	req := new(RequestPasswordResetRequest)
	if err := c.Bind(req); err != nil || req.Email == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": resetMessage})
	}

	var userID, username string
	err := db.Conn.QueryRow(c.Request().Context(),
		`SELECT id, username FROM users WHERE email = $1`, req.Email).Scan(&userID, &username)
	if err != nil || userID == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": resetMessage})
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": "password_reset",
		"exp":     time.Now().Add(config.C.PasswordResetTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, signErr := token.SignedString([]byte(config.C.JWTSecret))
	if signErr != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": resetMessage})
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s",
		strings.TrimRight(config.C.AppURL, "/"), url.QueryEscape(signed))

	_ = alerts.EnqueuePasswordReset(userID, req.Email, resetURL, username)

	return c.JSON(http.StatusOK, echo.Map{"message": resetMessage})
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// POST /auth/password/reset
func ResetPassword(c echo.Context) error {
	req := new(ResetPasswordRequest)
	if err := c.Bind(req); err != nil || req.Token == "" || len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(req.Token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(config.C.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if purpose, _ := claims["purpose"].(string); purpose != "password_reset" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	ct, err := db.Conn.Exec(c.Request().Context(),
		`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, string(hashed), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update password"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
