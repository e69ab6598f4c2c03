package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sudo-init-do/libhub/internal/config"
	"github.com/sudo-init-do/libhub/internal/db"
	"github.com/sudo-init-do/libhub/internal/user"
)

func main() {
	email := flag.String("email", "", "Email of the user to promote to admin")
	flag.Parse()

	if *email == "" {
		log.Fatal().Msg("usage: go run cmd/adminutil/promote_admin/main.go -email user@example.com")
	}

	if _, err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	db.Init()

	ct, err := db.Conn.Exec(context.Background(), `
		UPDATE users SET roles = array_append(roles, $1), updated_at = NOW()
		WHERE email = $2 AND NOT ($1 = ANY(roles))
	`, user.RoleAdmin, *email)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to promote user to admin")
	}
	if ct.RowsAffected() == 0 {
		log.Fatal().Str("email", *email).Msg("no user found, or already admin")
	}

	fmt.Printf("User %s promoted to admin.\n", *email)
}
