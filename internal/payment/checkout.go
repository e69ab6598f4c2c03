package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sudo-init-do/libhub/internal/alerts"
	"github.com/sudo-init-do/libhub/internal/db"
)

const (
	TypePurchase = "purchase"
	TypeRent     = "rent"
)

// Rentals expire a fixed window after confirmation.
const rentalPeriod = 30 * 24 * time.Hour

type CreateCheckoutRequest struct {
	BookID string `json:"bookId"`
	Type   string `json:"type"`
}

// POST /payment/create-checkout-session
func CreateCheckoutSession(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(CreateCheckoutRequest)
	if err := c.Bind(req); err != nil || req.BookID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Type != TypePurchase && req.Type != TypeRent {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be purchase or rent"})
	}

	ctx := c.Request().Context()

	var title string
	var price, rentPrice int64
	err := db.Conn.QueryRow(ctx,
		`SELECT title, price, rent_price FROM books WHERE id = $1`, req.BookID).
		Scan(&title, &price, &rentPrice)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
	}

	amount := price
	if req.Type == TypeRent {
		amount = rentPrice
	}
	if amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "book is not available for " + req.Type})
	}

	// Already holding an active copy; nothing to buy.
	var owns bool
	_ = db.Conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM book_copies
			WHERE user_id = $1 AND book_id = $2
			  AND (expires_at IS NULL OR expires_at > NOW())
		)`, uid, req.BookID).Scan(&owns)
	if owns {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "book already owned"})
	}

	id := uuid.New().String()
	_, err = db.Conn.Exec(ctx, `
		INSERT INTO checkout_sessions (id, user_id, book_id, type, amount, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`, id, uid, req.BookID, req.Type, amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create checkout session"})
	}

	session, err := provider.CreateSession(ctx, CreateSessionRequest{
		Reference:   id,
		Amount:      amount,
		Description: title + " (" + req.Type + ")",
	})
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("checkout provider create failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "checkout provider unavailable"})
	}

	_, err = db.Conn.Exec(ctx,
		`UPDATE checkout_sessions SET provider_session_id = $1 WHERE id = $2`, session.ID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store checkout session"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

// sessionByProviderID loads the checkout session a confirm call refers to.
// Swapped in tests.
var sessionByProviderID = func(ctx context.Context, providerSessionID, userID string) (id, bookID, copyType, status string, err error) {
	err = db.Conn.QueryRow(ctx, `
		SELECT id, book_id, type, status FROM checkout_sessions
		WHERE provider_session_id = $1 AND user_id = $2
	`, providerSessionID, userID).Scan(&id, &bookID, &copyType, &status)
	return
}

// markPaidAndGrant flips the session to paid and records the owned copy in a
// single transaction. A failed grant leaves the session pending, and the
// session_id uniqueness on book_copies caps concurrent confirms at one copy.
// Swapped in tests.
var markPaidAndGrant = func(ctx context.Context, sessionID, userID, bookID, copyType string, expiresAt *time.Time) error {
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE checkout_sessions SET status = 'paid', confirmed_at = NOW() WHERE id = $1`, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO book_copies (id, user_id, book_id, type, session_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO NOTHING
	`, uuid.New().String(), userID, bookID, copyType, sessionID, expiresAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// POST /payment/confirm-payment
//
// Idempotent: confirming an already-paid session returns its state again.
// A session only ever reads as paid once its copy is committed alongside it.
func ConfirmPayment(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(ConfirmPaymentRequest)
	if err := c.Bind(req); err != nil || req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := c.Request().Context()

	id, bookID, copyType, status, err := sessionByProviderID(ctx, req.SessionID, uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Checkout session not found"})
	}

	if status == "paid" {
		return c.JSON(http.StatusOK, echo.Map{"message": "payment confirmed", "bookId": bookID, "type": copyType})
	}

	session, err := provider.ConfirmSession(ctx, req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("checkout provider confirm failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "checkout provider unavailable"})
	}
	if session.Status != "paid" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment not completed"})
	}

	var expiresAt *time.Time
	if copyType == TypeRent {
		t := time.Now().Add(rentalPeriod)
		expiresAt = &t
	}
	if err := markPaidAndGrant(ctx, id, uid, bookID, copyType, expiresAt); err != nil {
		log.Error().Err(err).Str("session", id).Msg("payment grant failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record payment"})
	}

	if email, ok := c.Get("email").(string); ok && email != "" {
		username, _ := c.Get("username").(string)
		_ = alerts.EnqueueReceiptEmail(uid, email, username, bookID, copyType)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "payment confirmed", "bookId": bookID, "type": copyType})
}
