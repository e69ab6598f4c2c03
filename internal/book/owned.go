package book

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/db"
)

// GET /books/owned returns the caller's purchased and (active) rented books.
func OwnedBooks(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(c.Request().Context(), `
		SELECT b.id, b.author_id, u.username, b.title, COALESCE(b.description, ''),
		       COALESCE(b.category, ''), b.price, b.rent_price, COALESCE(b.cover_url, ''),
		       b.published_date, b.created_at,
		       bc.type, bc.expires_at, bc.created_at
		FROM book_copies bc
		JOIN books b ON b.id = bc.book_id
		JOIN users u ON u.id = b.author_id
		WHERE bc.user_id = $1
		  AND (bc.expires_at IS NULL OR bc.expires_at > NOW())
		ORDER BY bc.created_at DESC
	`, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch owned books"})
	}
	defer rows.Close()

	purchased := []Book{}
	rented := []OwnedCopy{}
	for rows.Next() {
		var oc OwnedCopy
		b := &oc.Book
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Description,
			&b.Category, &b.Price, &b.RentPrice, &b.CoverURL, &b.PublishedDate, &b.CreatedAt,
			&oc.Type, &oc.ExpiresAt, &oc.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse owned book"})
		}
		if oc.Type == "purchase" {
			purchased = append(purchased, *b)
		} else {
			rented = append(rented, oc)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"purchasedBooks": purchased,
		"rentedBooks":    rented,
	})
}

// GET /books/:id/content gates the full text behind ownership:
// the author, a purchaser, or a holder of an unexpired rental.
func Content(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookID := c.Param("id")
	ctx := c.Request().Context()

	var authorID string
	var content *string
	err := db.Conn.QueryRow(ctx,
		`SELECT author_id, content FROM books WHERE id = $1`, bookID).Scan(&authorID, &content)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}

	if authorID != uid {
		var owns bool
		err = db.Conn.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM book_copies
				WHERE user_id = $1 AND book_id = $2
				  AND (expires_at IS NULL OR expires_at > NOW())
			)`, uid, bookID).Scan(&owns)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not check ownership"})
		}
		if !owns {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "book not purchased or rental expired"})
		}
	}

	body := ""
	if content != nil {
		body = *content
	}
	return c.JSON(http.StatusOK, echo.Map{"book_id": bookID, "content": body})
}
