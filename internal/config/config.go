package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration, loaded once at startup.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort string `envconfig:"PORT" default:"8080"`
	AppURL     string `envconfig:"APP_URL" default:"http://localhost:3000"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Session tokens
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// Password reset links
	PasswordResetTTL time.Duration `envconfig:"PASSWORD_RESET_TTL" default:"30m"`

	// Admin bootstrap (empty disables the endpoint)
	AdminBootstrapSecret string `envconfig:"ADMIN_BOOTSTRAP_SECRET"`

	// Background jobs
	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// Hosted checkout provider
	CheckoutBaseURL string `envconfig:"CHECKOUT_BASE_URL" default:"https://pay.libhub.dev"`
	CheckoutAPIKey  string `envconfig:"CHECKOUT_API_KEY"`

	// Media host for avatar / cover uploads
	MediaBaseURL string `envconfig:"MEDIA_BASE_URL" default:"https://media.libhub.dev"`
	MediaAPIKey  string `envconfig:"MEDIA_API_KEY"`

	// SMTP mailer
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"465"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`
}

// C is the process-wide configuration, set by Load.
var C *Config

// Load reads .env if present, then the environment, and stores the result in C.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	C = cfg
	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
