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
	email := flag.String("email", "", "Email of the user to grant the author role")
	flag.Parse()

	if *email == "" {
		log.Fatal().Msg("usage: go run cmd/adminutil/promote_author/main.go -email user@example.com")
	}

	if _, err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	db.Init()

	ct, err := db.Conn.Exec(context.Background(), `
		UPDATE users SET roles = array_append(roles, $1), updated_at = NOW()
		WHERE email = $2 AND NOT ($1 = ANY(roles))
	`, user.RoleAuthor, *email)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to grant author role")
	}
	if ct.RowsAffected() == 0 {
		log.Fatal().Str("email", *email).Msg("no user found, or already an author")
	}

	fmt.Printf("User %s granted the author role.\n", *email)
}
