package book

import "time"

type Book struct {
	ID            string     `json:"id"`
	AuthorID      string     `json:"author_id"`
	AuthorName    string     `json:"author_name,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Price         int64      `json:"price"`
	RentPrice     int64      `json:"rent_price"`
	CoverURL      string     `json:"cover_url,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OwnedCopy is a confirmed purchase or rental of a book.
type OwnedCopy struct {
	Book      Book       `json:"book"`
	Type      string     `json:"type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
