package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/sudo-init-do/libhub/internal/config"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and ensures the schema is in place.
func Init() {
	var err error
	Conn, err = pgxpool.New(context.Background(), config.C.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("unable to ping database")
	}

	log.Info().Msg("connected to Postgres")

	ensureUsersTable()
	ensureBooksTable()
	ensureCommentsTable()
	ensureCheckoutSessionsTable()
	ensureBookCopiesTable()
}

// ensureUsersTable creates the users table if missing.
// Roles live in a TEXT[] so a user can hold several at once.
func ensureUsersTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            roles TEXT[] NOT NULL DEFAULT '{reader}',
            avatar_url TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
    `)
	if err != nil {
		log.Error().Err(err).Msg("failed to ensure users table")
	}
}

func ensureBooksTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS books (
            id UUID PRIMARY KEY,
            author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            description TEXT,
            category TEXT,
            price BIGINT NOT NULL DEFAULT 0,
            rent_price BIGINT NOT NULL DEFAULT 0,
            cover_url TEXT,
            content TEXT,
            published_date DATE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_books_author ON books(author_id);
        CREATE INDEX IF NOT EXISTS idx_books_category ON books(category);
    `)
	if err != nil {
		log.Error().Err(err).Msg("failed to ensure books table")
	}
}

func ensureCommentsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS comments (
            id UUID PRIMARY KEY,
            book_id UUID NOT NULL REFERENCES books(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_comments_book ON comments(book_id);
    `)
	if err != nil {
		log.Error().Err(err).Msg("failed to ensure comments table")
	}
}

func ensureCheckoutSessionsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS checkout_sessions (
            id UUID PRIMARY KEY,
            provider_session_id TEXT UNIQUE,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            book_id UUID NOT NULL REFERENCES books(id) ON DELETE CASCADE,
            type TEXT NOT NULL CHECK (type IN ('purchase', 'rent')),
            amount BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid', 'failed')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            confirmed_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_checkout_sessions_user ON checkout_sessions(user_id);
        CREATE INDEX IF NOT EXISTS idx_checkout_sessions_status ON checkout_sessions(status);
    `)
	if err != nil {
		log.Error().Err(err).Msg("failed to ensure checkout_sessions table")
	}
}

// ensureBookCopiesTable holds confirmed purchases and rentals, at most one
// copy per checkout session. A NULL expires_at means a perpetual copy.
func ensureBookCopiesTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS book_copies (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            book_id UUID NOT NULL REFERENCES books(id) ON DELETE CASCADE,
            type TEXT NOT NULL CHECK (type IN ('purchase', 'rent')),
            session_id UUID NULL UNIQUE REFERENCES checkout_sessions(id) ON DELETE SET NULL,
            expires_at TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_book_copies_user ON book_copies(user_id);
        CREATE INDEX IF NOT EXISTS idx_book_copies_book ON book_copies(book_id);
    `)
	if err != nil {
		log.Error().Err(err).Msg("failed to ensure book_copies table")
	}
}
