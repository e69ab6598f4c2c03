package user

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/libhub/internal/db"
)

// GET /users
func ListUsers(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(), `
		SELECT id, username, email, roles, COALESCE(avatar_url, ''), created_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch users"})
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Roles, &u.AvatarURL, &u.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse user record"})
		}
		users = append(users, u)
	}
	return c.JSON(http.StatusOK, users)
}

// GET /users/:id (self or admin; enforced by route middleware)
func GetUser(c echo.Context) error {
	var u User
	err := db.Conn.QueryRow(c.Request().Context(), `
		SELECT id, username, email, roles, COALESCE(avatar_url, ''), created_at
		FROM users WHERE id = $1
	`, c.Param("id")).Scan(&u.ID, &u.Username, &u.Email, &u.Roles, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found!"})
	}
	return c.JSON(http.StatusOK, u)
}

type CreateUserRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	AvatarURL string   `json:"avatar_url"`
}

// POST /users (admin)
func CreateUser(c echo.Context) error {
	req := new(CreateUserRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || len(req.Roles) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required!"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email format!"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 8 characters long!"})
	}
	if !RolesValid(req.Roles) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid role(s) provided!"})
	}

	ctx := c.Request().Context()

	var existing string
	if err := db.Conn.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1 OR email = $2`,
		req.Username, req.Email).Scan(&existing); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Username or email already exists!"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	u := User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Roles:     req.Roles,
		AvatarURL: req.AvatarURL,
	}
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password, roles, avatar_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at
	`, u.ID, u.Username, u.Email, string(hashed), u.Roles, u.AvatarURL).Scan(&u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Username or email already exists!"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User created successfully!", "user": u})
}

type UpdateUserRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	AvatarURL string   `json:"avatar_url"`
}

// PUT /users/:id (self or admin; enforced by route middleware). Partial
// update: empty fields keep their stored values, so none can be cleared here.
func UpdateUser(c echo.Context) error {
	req := new(UpdateUserRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email != "" && !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email format!"})
	}

	// Only admins may change role sets.
	if req.Roles != nil {
		callerRoles, _ := c.Get("roles").([]string)
		if !HasRole(callerRoles, RoleAdmin) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if !RolesValid(req.Roles) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid role(s) provided!"})
		}
	}

	hashed := ""
	if req.Password != "" {
		if len(req.Password) < 8 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 8 characters long!"})
		}
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		hashed = string(h)
	}

	var u User
	err := db.Conn.QueryRow(c.Request().Context(), `
		UPDATE users SET
			username = COALESCE(NULLIF($1, ''), username),
			email = COALESCE(NULLIF($2, ''), email),
			password = COALESCE(NULLIF($3, ''), password),
			roles = COALESCE($4, roles),
			avatar_url = COALESCE(NULLIF($5, ''), avatar_url),
			updated_at = NOW()
		WHERE id = $6
		RETURNING id, username, email, roles, COALESCE(avatar_url, ''), created_at
	`, req.Username, req.Email, hashed, req.Roles, req.AvatarURL, c.Param("id")).
		Scan(&u.ID, &u.Username, &u.Email, &u.Roles, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found!"})
	}

	return c.JSON(http.StatusOK, u)
}

// DELETE /users/:id (admin)
func DeleteUser(c echo.Context) error {
	ct, err := db.Conn.Exec(c.Request().Context(), `DELETE FROM users WHERE id = $1`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found!"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully."})
}
