package book

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

// likePattern wraps q for ILIKE, escaping the wildcard characters so a
// literal % or _ in the query matches itself.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// GET /books returns a page of the catalog.
// Response shape: {books, totalBooks, currentPage, totalPages}.
func ListBooks(c echo.Context) error {
	q := c.QueryParam("q")
	category := c.QueryParam("category")

	page := 1
	limit := 20
	if p := c.QueryParam("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	var where []string
	var args []any
	if q != "" {
		args = append(args, likePattern(q))
		n := len(args)
		where = append(where, fmt.Sprintf("(b.title ILIKE $%d OR b.description ILIKE $%d)", n, n))
	}
	if category != "" {
		args = append(args, category)
		where = append(where, fmt.Sprintf("b.category = $%d", len(args)))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	ctx := c.Request().Context()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM books b`+cond, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch books"})
	}

	query := `
		SELECT b.id, b.author_id, u.username, b.title, COALESCE(b.description, ''),
		       COALESCE(b.category, ''), b.price, b.rent_price, COALESCE(b.cover_url, ''),
		       b.published_date, b.created_at
		FROM books b
		JOIN users u ON u.id = b.author_id` + cond +
		fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch books"})
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Description,
			&b.Category, &b.Price, &b.RentPrice, &b.CoverURL, &b.PublishedDate, &b.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse book record"})
		}
		books = append(books, b)
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	return c.JSON(http.StatusOK, echo.Map{
		"books":       books,
		"totalBooks":  total,
		"currentPage": page,
		"totalPages":  totalPages,
	})
}

// GET /books/:id returns one book together with its comments.
func GetBook(c echo.Context) error {
	ctx := c.Request().Context()

	var b Book
	err := db.Conn.QueryRow(ctx, `
		SELECT b.id, b.author_id, u.username, b.title, COALESCE(b.description, ''),
		       COALESCE(b.category, ''), b.price, b.rent_price, COALESCE(b.cover_url, ''),
		       b.published_date, b.created_at
		FROM books b
		JOIN users u ON u.id = b.author_id
		WHERE b.id = $1
	`, c.Param("id")).Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Description,
		&b.Category, &b.Price, &b.RentPrice, &b.CoverURL, &b.PublishedDate, &b.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}

	type comment struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Username  string    `json:"username"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}

	rows, err := db.Conn.Query(ctx, `
		SELECT c.id, c.user_id, u.username, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.book_id = $1 ORDER BY c.created_at ASC
	`, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch comments"})
	}
	defer rows.Close()

	comments := []comment{}
	for rows.Next() {
		var cm comment
		if err := rows.Scan(&cm.ID, &cm.UserID, &cm.Username, &cm.Content, &cm.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse comment record"})
		}
		comments = append(comments, cm)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":            b.ID,
		"author_id":     b.AuthorID,
		"author_name":   b.AuthorName,
		"title":         b.Title,
		"description":   b.Description,
		"category":      b.Category,
		"price":         b.Price,
		"rent_price":    b.RentPrice,
		"cover_url":     b.CoverURL,
		"publishedDate": b.PublishedDate,
		"created_at":    b.CreatedAt,
		"comments":      comments,
	})
}

type UpsertBookRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Price         int64      `json:"price"`
	RentPrice     int64      `json:"rent_price"`
	CoverURL      string     `json:"cover_url"`
	Content       string     `json:"content"`
	PublishedDate *time.Time `json:"publishedDate"`
}

// POST /books (author or admin)
func CreateBook(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(UpsertBookRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Price < 0 || req.RentPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must not be negative"})
	}

	b := Book{
		ID:            uuid.New().String(),
		AuthorID:      uid,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Price:         req.Price,
		RentPrice:     req.RentPrice,
		CoverURL:      req.CoverURL,
		PublishedDate: req.PublishedDate,
	}
	err := db.Conn.QueryRow(c.Request().Context(), `
		INSERT INTO books (id, author_id, title, description, category, price, rent_price, cover_url, content, published_date)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
		RETURNING created_at
	`, b.ID, b.AuthorID, b.Title, b.Description, b.Category, b.Price, b.RentPrice,
		b.CoverURL, req.Content, b.PublishedDate).Scan(&b.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create book"})
	}

	return c.JSON(http.StatusCreated, b)
}

// canManageBook reports whether the caller owns the book or is an admin.
func canManageBook(c echo.Context, bookID string) (bool, error) {
	uid, _ := c.Get("user_id").(string)
	roles, _ := c.Get("roles").([]string)

	var authorID string
	err := db.Conn.QueryRow(c.Request().Context(),
		`SELECT author_id FROM books WHERE id = $1`, bookID).Scan(&authorID)
	if err != nil {
		return false, err
	}
	return authorID == uid || user.HasRole(roles, user.RoleAdmin), nil
}

// PUT /books/:id (owning author or admin). Partial update: empty strings and
// zero prices keep the stored values, so a field cannot be cleared here.
func UpdateBook(c echo.Context) error {
	allowed, err := canManageBook(c, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	req := new(UpsertBookRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Price < 0 || req.RentPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must not be negative"})
	}

	var b Book
	err = db.Conn.QueryRow(c.Request().Context(), `
		UPDATE books SET
			title = COALESCE(NULLIF($1, ''), title),
			description = COALESCE(NULLIF($2, ''), description),
			category = COALESCE(NULLIF($3, ''), category),
			price = CASE WHEN $4 > 0 THEN $4 ELSE price END,
			rent_price = CASE WHEN $5 > 0 THEN $5 ELSE rent_price END,
			cover_url = COALESCE(NULLIF($6, ''), cover_url),
			content = COALESCE(NULLIF($7, ''), content),
			published_date = COALESCE($8, published_date),
			updated_at = NOW()
		WHERE id = $9
		RETURNING id, author_id, title, COALESCE(description, ''), COALESCE(category, ''),
		          price, rent_price, COALESCE(cover_url, ''), published_date, created_at
	`, req.Title, req.Description, req.Category, req.Price, req.RentPrice,
		req.CoverURL, req.Content, req.PublishedDate, c.Param("id")).
		Scan(&b.ID, &b.AuthorID, &b.Title, &b.Description, &b.Category,
			&b.Price, &b.RentPrice, &b.CoverURL, &b.PublishedDate, &b.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}

	return c.JSON(http.StatusOK, b)
}

// DELETE /books/:id (owning author or admin)
func DeleteBook(c echo.Context) error {
	allowed, err := canManageBook(c, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ct, err := db.Conn.Exec(c.Request().Context(), `DELETE FROM books WHERE id = $1`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete book"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book deleted successfully."})
}

// GET /books/author/:id lists an author's books, newest first.
func ListByAuthor(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(), `
		SELECT b.id, b.author_id, u.username, b.title, COALESCE(b.description, ''),
		       COALESCE(b.category, ''), b.price, b.rent_price, COALESCE(b.cover_url, ''),
		       b.published_date, b.created_at
		FROM books b
		JOIN users u ON u.id = b.author_id
		WHERE b.author_id = $1 ORDER BY b.created_at DESC
	`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch books"})
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Description,
			&b.Category, &b.Price, &b.RentPrice, &b.CoverURL, &b.PublishedDate, &b.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse book record"})
		}
		books = append(books, b)
	}
	return c.JSON(http.StatusOK, books)
}
