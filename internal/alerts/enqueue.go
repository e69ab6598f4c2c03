package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sudo-init-do/libhub/internal/config"
)

func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

func enqueue(taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = ensureClient().Enqueue(asynq.NewTask(taskType, b), asynq.Queue("emails"))
	return err
}

// EnqueueWelcomeEmail schedules a welcome email for a new user.
func EnqueueWelcomeEmail(userID, email, username string) error {
	base := strings.TrimRight(config.C.AppURL, "/")
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to the library, %s!", username),
		Body:    fmt.Sprintf("Hi %s, thanks for joining.\n\nBrowse the catalog: %s", username, base),
	}
	return enqueue(TaskWelcomeEmail, WelcomeEmailPayload{
		UserID: userID, Username: username, Email: email, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueReceiptEmail notifies the buyer after a confirmed payment.
func EnqueueReceiptEmail(userID, email, username, bookID, copyType string) error {
	action := "purchase"
	if copyType == "rent" {
		action = "rental"
	}
	env := EmailEnvelope{
		To:      email,
		Subject: "Your " + action + " is confirmed",
		Body:    fmt.Sprintf("Hi %s, your %s is confirmed. The book is now available under your library.", username, action),
	}
	return enqueue(TaskPaymentReceipt, PaymentReceiptPayload{
		UserID: userID, BookID: bookID, Type: copyType, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueuePasswordReset sends a reset link to the user.
func EnqueuePasswordReset(userID, email, resetURL, username string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Hi %s,\n\nReset your password here: %s\n\nIf you did not request this, ignore this email.", username, resetURL),
	}
	return enqueue(TaskPasswordReset, PasswordResetPayload{
		UserID: userID, Email: email, ResetURL: resetURL, Envelope: env, Requested: time.Now(),
	})
}
