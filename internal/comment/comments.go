package comment

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

type Comment struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /comment
func ListComments(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(), `
		SELECT c.id, c.book_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch comments"})
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.BookID, &cm.UserID, &cm.Username, &cm.Content, &cm.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse comment record"})
		}
		comments = append(comments, cm)
	}
	return c.JSON(http.StatusOK, comments)
}

type CommentRequest struct {
	Content string `json:"content"`
}

// POST /comment/:bookId
func CreateComment(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(CommentRequest)
	if err := c.Bind(req); err != nil || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	ctx := c.Request().Context()
	bookID := c.Param("bookId")

	var exists bool
	if err := db.Conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil || !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}

	cm := Comment{
		ID:      uuid.New().String(),
		BookID:  bookID,
		UserID:  uid,
		Content: req.Content,
	}
	if username, ok := c.Get("username").(string); ok {
		cm.Username = username
	}
	err := db.Conn.QueryRow(ctx, `
		INSERT INTO comments (id, book_id, user_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, cm.ID, cm.BookID, cm.UserID, cm.Content).Scan(&cm.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create comment"})
	}

	return c.JSON(http.StatusCreated, cm)
}

// canManageComment reports whether the caller wrote the comment or is an admin.
func canManageComment(c echo.Context, commentID string) (bool, error) {
	uid, _ := c.Get("user_id").(string)
	roles, _ := c.Get("roles").([]string)

	var ownerID string
	err := db.Conn.QueryRow(c.Request().Context(),
		`SELECT user_id FROM comments WHERE id = $1`, commentID).Scan(&ownerID)
	if err != nil {
		return false, err
	}
	return ownerID == uid || user.HasRole(roles, user.RoleAdmin), nil
}

// PUT /comment/:id
func UpdateComment(c echo.Context) error {
	allowed, err := canManageComment(c, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	req := new(CommentRequest)
	if err := c.Bind(req); err != nil || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	var cm Comment
	err = db.Conn.QueryRow(c.Request().Context(), `
		UPDATE comments SET content = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, book_id, user_id, content, created_at
	`, req.Content, c.Param("id")).Scan(&cm.ID, &cm.BookID, &cm.UserID, &cm.Content, &cm.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	}
	return c.JSON(http.StatusOK, cm)
}

// DELETE /comment/:id
func DeleteComment(c echo.Context) error {
	allowed, err := canManageComment(c, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ct, err := db.Conn.Exec(c.Request().Context(), `DELETE FROM comments WHERE id = $1`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete comment"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully."})
}
