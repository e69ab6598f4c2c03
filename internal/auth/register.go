package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/libhub/internal/alerts"
	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// usernameOrEmailTaken reports whether either unique field is already used.
// Swapped in tests.
var usernameOrEmailTaken = func(ctx context.Context, username, email string) bool {
	var existing string
	err := db.Conn.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1 OR email = $2`,
		username, email).Scan(&existing)
	return err == nil
}

// POST /auth/register
func Register(c echo.Context) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if errs := ValidateRegistration(req.Username, req.Email, req.Password); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx := c.Request().Context()

	if usernameOrEmailTaken(ctx, req.Username, req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username or Email is already taken"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	u := user.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Roles:    []string{user.RoleReader},
	}
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, u.Username, u.Email, string(hashed), u.Roles).Scan(&u.CreatedAt)
	if err != nil {
		// Unique race between the lookup above and the insert.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username or Email is already taken"})
	}

	token, err := IssueToken(u.ID, u.Username, u.Email, u.Roles, []byte(config.C.JWTSecret), config.C.TokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	_ = alerts.EnqueueWelcomeEmail(u.ID, u.Email, u.Username)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    u,
	})
}
