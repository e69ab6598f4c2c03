package main

import (
	"context"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sudo-init-do/libhub/internal/admin"
	"github.com/sudo-init-do/libhub/internal/alerts"
	"github.com/sudo-init-do/libhub/internal/auth"
	"github.com/sudo-init-do/libhub/internal/book"
	"github.com/sudo-init-do/libhub/internal/comment"
	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/db"
	mware "github.com/sudo-init-do/libhub/internal/middleware"
	"github.com/sudo-init-do/libhub/internal/payment"
	"github.com/sudo-init-do/libhub/internal/upload"
	"github.com/sudo-init-do/libhub/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Logger = log.Output(os.Stdout)

	// Initialize subsystems
	db.Init()
	alerts.Init()
	payment.Init()
	upload.Init()

	e := echo.New()
	e.HideBanner = true

	// Basic middleware
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// Health and root routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "libhub"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db not initialized"})
		}
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes
	// Auth routes with per-IP rate limiting to protect register/login from abuse
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/password/request", auth.RequestPasswordReset)
	authGroup.POST("/password/reset", auth.ResetPassword)
	authGroup.POST("/bootstrap-admin", auth.BootstrapAdmin)

	e.GET("/books", book.ListBooks)
	e.GET("/books/:id", book.GetBook)
	e.GET("/books/author/:id", book.ListByAuthor)
	e.GET("/comment", comment.ListComments)

	// Protected routes
	api := e.Group("")
	api.Use(mware.SessionVerifier)

	api.GET("/auth/me", auth.Me)

	api.GET("/users", user.ListUsers, mware.RequireRoles(user.RoleAdmin))
	api.POST("/users", user.CreateUser, mware.RequireRoles(user.RoleAdmin))
	api.GET("/users/:id", user.GetUser, mware.SelfOrRoles(user.RoleAdmin))
	api.PUT("/users/:id", user.UpdateUser, mware.SelfOrRoles(user.RoleAdmin))
	api.DELETE("/users/:id", user.DeleteUser, mware.RequireRoles(user.RoleAdmin))

	api.POST("/books", book.CreateBook, mware.RequireRoles(user.RoleAuthor, user.RoleAdmin))
	api.GET("/books/owned", book.OwnedBooks)
	api.PUT("/books/:id", book.UpdateBook)
	api.DELETE("/books/:id", book.DeleteBook)
	api.GET("/books/:id/content", book.Content)

	api.POST("/comment/:bookId", comment.CreateComment)
	api.PUT("/comment/:id", comment.UpdateComment)
	api.DELETE("/comment/:id", comment.DeleteComment)

	api.POST("/payment/create-checkout-session", payment.CreateCheckoutSession)
	api.POST("/payment/confirm-payment", payment.ConfirmPayment)

	api.POST("/upload", upload.Image)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(mware.SessionVerifier)
	adminGroup.Use(mware.RequireRoles(user.RoleAdmin))

	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/payments", admin.ListPayments)

	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
