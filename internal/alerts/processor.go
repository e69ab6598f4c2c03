package alerts

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/sudo-init-do/libhub/internal/config"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the asynq server and initializes a shared client.
func Init() {
	opts := asynq.RedisClientOpt{Addr: config.C.RedisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TaskPaymentReceipt, handlePaymentReceipt)
	mux.HandleFunc(TaskPasswordReset, handlePasswordReset)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Error().Err(err).Msg("asynq server stopped")
		}
	}()

	log.Info().Str("addr", config.C.RedisAddr).Msg("alerts queue initialized")
}

func handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Error().Err(err).Str("to", p.Envelope.To).Msg("welcome email failed")
		return err
	}
	return nil
}

func handlePaymentReceipt(_ context.Context, t *asynq.Task) error {
	var p PaymentReceiptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Error().Err(err).Str("to", p.Envelope.To).Msg("receipt email failed")
		return err
	}
	return nil
}

func handlePasswordReset(_ context.Context, t *asynq.Task) error {
	var p PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Error().Err(err).Str("to", p.Envelope.To).Msg("password reset email failed")
		return err
	}
	return nil
}
