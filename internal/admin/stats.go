package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := c.Request().Context()

	var users, books, comments, sales, rentals int
	var revenue int64

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&books)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&comments)
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM checkout_sessions WHERE status = 'paid' AND type = 'purchase'`).Scan(&sales)
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM checkout_sessions WHERE status = 'paid' AND type = 'rent'`).Scan(&rentals)
	_ = db.Conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM checkout_sessions WHERE status = 'paid'`).Scan(&revenue)

	type categoryCount struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	topCategories := []categoryCount{}
	rows, err := db.Conn.Query(ctx, `
		SELECT COALESCE(category, 'uncategorized'), COUNT(*)
		FROM books GROUP BY category ORDER BY COUNT(*) DESC LIMIT 5
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var cc categoryCount
			if err := rows.Scan(&cc.Category, &cc.Count); err == nil {
				topCategories = append(topCategories, cc)
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":         users,
		"books":         books,
		"comments":      comments,
		"sales":         sales,
		"rentals":       rentals,
		"revenue":       revenue,
		"topCategories": topCategories,
	})
}
