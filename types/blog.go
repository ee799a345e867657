package types

import "time"

// Blog is a dated article with an optional single picture. It shares the
// ownership rules of Posting.
type Blog struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`

	// Picture is the public URL of the uploaded image, or empty.
	Picture string `json:"picture" db:"picture"`

	Owner     string    `json:"owner" db:"owner"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
