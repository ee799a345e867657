package types

import "time"

// MaxPostingPictures is the largest number of pictures a posting may carry.
const MaxPostingPictures = 3

// Posting is a dated announcement with up to three pictures.
type Posting struct {
	// ID is the generated UUID of the posting.
	ID string `json:"id" db:"id"`

	// Title is the short headline of the posting.
	Title string `json:"title" db:"title"`

	// Description is the free-form body text.
	Description string `json:"description" db:"description"`

	// Date is the calendar day the posting refers to. Only the date part
	// is meaningful.
	Date time.Time `json:"date" db:"date"`

	// Pictures holds the public URLs returned by the storage adapter, in
	// upload order. It is never nil once loaded from the store.
	Pictures []string `json:"pictures" db:"pictures"`

	// Owner is the username of the creator. Only the owner or an admin may
	// update or delete the posting.
	Owner string `json:"owner" db:"owner"`

	// CreatedAt is the timestamp at which the posting was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the posting.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
