package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/libhub/internal/db"
)

type PaymentRecord struct {
	ID                string     `json:"id"`
	ProviderSessionID string     `json:"provider_session_id,omitempty"`
	UserID            string     `json:"user_id"`
	Username          string     `json:"username"`
	BookID            string     `json:"book_id"`
	BookTitle         string     `json:"book_title"`
	Type              string     `json:"type"`
	Amount            int64      `json:"amount"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
}

// GET /admin/payments?status=
func ListPayments(c echo.Context) error {
	status := c.QueryParam("status")

	query := `
		SELECT cs.id, COALESCE(cs.provider_session_id, ''), cs.user_id, u.username,
		       cs.book_id, b.title, cs.type, cs.amount, cs.status, cs.created_at, cs.confirmed_at
		FROM checkout_sessions cs
		JOIN users u ON u.id = cs.user_id
		JOIN books b ON b.id = cs.book_id`
	var args []any
	if status != "" {
		query += ` WHERE cs.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY cs.created_at DESC`

	rows, err := db.Conn.Query(c.Request().Context(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch payments"})
	}
	defer rows.Close()

	payments := []PaymentRecord{}
	for rows.Next() {
		var p PaymentRecord
		if err := rows.Scan(&p.ID, &p.ProviderSessionID, &p.UserID, &p.Username,
			&p.BookID, &p.BookTitle, &p.Type, &p.Amount, &p.Status, &p.CreatedAt, &p.ConfirmedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse payment record"})
		}
		payments = append(payments, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}
