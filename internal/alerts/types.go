package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail   = "email:welcome"
	TaskPaymentReceipt = "email:payment_receipt"
	TaskPasswordReset  = "email:password_reset"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

type PaymentReceiptPayload struct {
	UserID   string        `json:"user_id"`
	BookID   string        `json:"book_id"`
	Type     string        `json:"type"` // purchase|rent
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

type PasswordResetPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}
